package module

import (
	"time"

	"trawler/internal/platform/config"
)

// Options holds configuration settings for the judge module
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	Concurrency int
	Pacing      time.Duration
}

// FromConfig reads TRAWLER_JUDGE_* settings; the key falls back to
// ANTHROPIC_API_KEY
func FromConfig(cfg config.Conf) Options {
	jc := cfg.Prefix("TRAWLER_JUDGE_")
	return Options{
		APIKey:      jc.MayString("API_KEY", cfg.MayString("ANTHROPIC_API_KEY", "")),
		BaseURL:     jc.MayString("BASE_URL", ""),
		Model:       jc.MayString("MODEL", ""),
		MaxTokens:   jc.MayInt("MAX_TOKENS", 1024),
		Timeout:     jc.MayDuration("TIMEOUT", 30*time.Second),
		Concurrency: jc.MayInt("CONCURRENCY", 5),
		Pacing:      jc.MayDuration("PACING", 250*time.Millisecond),
	}
}
