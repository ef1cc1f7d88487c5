package store

import (
	"time"

	"trawler/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG   PGConfig
	Lite LiteConfig
	CH   CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// LiteConfig configures the embedded sqlite database
type LiteConfig struct {
	Enabled     bool
	Path        string
	BusyTimeout time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	DSN     string
}

// ConfigFromEnv reads PG_*, SQLITE_* and CH_* keys under cfg
// A backend is enabled when its address is set
func ConfigFromEnv(cfg config.Conf, appName string) Config {
	pg := cfg.Prefix("PG_")
	lite := cfg.Prefix("SQLITE_")
	ch := cfg.Prefix("CH_")
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        pg.Has("URL"),
			URL:            pg.MayString("URL", ""),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 250),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		Lite: LiteConfig{
			Enabled:     lite.Has("PATH"),
			Path:        lite.MayString("PATH", ""),
			BusyTimeout: lite.MayDuration("BUSY_TIMEOUT", 5*time.Second),
		},
		CH: CHConfig{
			Enabled: ch.Has("DSN"),
			DSN:     ch.MayString("DSN", ""),
		},
	}
}
