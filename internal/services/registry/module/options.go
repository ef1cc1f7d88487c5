package module

import "trawler/internal/platform/config"

// Registry backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options holds configuration settings for the registry module
type Options struct {
	Backend      string
	Path         string
	HistoryDepth int
}

// FromConfig reads TRAWLER_REGISTRY_* settings
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("TRAWLER_REGISTRY_")
	return Options{
		Backend:      rc.MayEnum("BACKEND", BackendFile, BackendFile, BackendSQLite, BackendPostgres),
		Path:         rc.MayString("PATH", "data/registry.json"),
		HistoryDepth: rc.MayInt("HISTORY_DEPTH", 10),
	}
}
