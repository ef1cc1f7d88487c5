package module

import (
	"time"

	"trawler/internal/platform/config"
)

// DefaultQueries is the ordered keyword search list
var DefaultQueries = []string{
	"open source cli tool",
	"mcp server github",
	"self-hosted alternative",
	"new developer tool release",
	"local llm tool",
	"agent framework github",
}

// Options holds configuration settings for the fetcher module
type Options struct {
	BearerToken string
	ListID      string
	BaseURL     string
	CostPerItem float64
	Timeout     time.Duration

	BatchSize    int
	MaxBatches   int
	Queries      []string
	JudgeWorkers int

	LinkMaxLinks int
	LinkMaxChars int
	SnippetURL   string
}

// FromConfig reads TRAWLER_X_* and TRAWLER_FETCH_* settings
func FromConfig(cfg config.Conf) Options {
	xc := cfg.Prefix("TRAWLER_X_")
	fc := cfg.Prefix("TRAWLER_FETCH_")
	return Options{
		BearerToken: xc.MayString("BEARER_TOKEN", ""),
		ListID:      xc.MayString("LIST_ID", ""),
		BaseURL:     xc.MayString("BASE_URL", ""),
		CostPerItem: xc.MayFloat64("COST_PER_ITEM", 0.01),
		Timeout:     xc.MayDuration("TIMEOUT", 15*time.Second),

		BatchSize:    fc.MayInt("BATCH_SIZE", 15),
		MaxBatches:   fc.MayInt("MAX_BATCHES", 8),
		Queries:      fc.MayLines("QUERIES", DefaultQueries),
		JudgeWorkers: fc.MayInt("JUDGE_WORKERS", 5),

		LinkMaxLinks: fc.MayInt("LINK_MAX_LINKS", 3),
		LinkMaxChars: fc.MayInt("LINK_MAX_CHARS", 2000),
		SnippetURL:   fc.MayString("SNIPPET_URL", ""),
	}
}
