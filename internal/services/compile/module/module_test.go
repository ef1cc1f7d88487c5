package module

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trawler/internal/modkit"
	"trawler/internal/modkit/module"
	"trawler/internal/platform/config"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
	"trawler/internal/services/compile/domain"
)

func TestFromConfigDefaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.MaxPicks != 6 || o.MinPicks != 6 || o.MinScore != 3 || o.BudgetCap != 1.0 {
		t.Fatalf("defaults = %+v", o)
	}
	if len(o.BackfillQueries) != len(DefaultBackfillQueries) || o.BackfillCount != 2 {
		t.Fatalf("backfill defaults = %+v", o)
	}
	if o.LookupInterval != 500*time.Millisecond || !o.HNEnabled {
		t.Fatalf("source defaults = %+v", o)
	}
}

func TestFromConfigOverrides(t *testing.T) {
	t.Setenv("TRAWLER_MIN_PICKS", "3")
	t.Setenv("TRAWLER_RSS_FEEDS", "https://a.example/feed, https://b.example/feed")
	t.Setenv("TRAWLER_BACKFILL_QUERIES", "one|two")
	t.Setenv("GITHUB_TOKEN", "tok")
	o := FromConfig(config.New())
	if o.MinPicks != 3 || len(o.RSSFeeds) != 2 || len(o.BackfillQueries) != 2 {
		t.Fatalf("overrides = %+v", o)
	}
	if o.GitHubTokens != "tok" {
		t.Fatalf("token fallback = %q", o.GitHubTokens)
	}
}

func TestNewWiresPorts(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRAWLER_DATA_DIR", dir)
	t.Setenv("TRAWLER_REGISTRY_PATH", filepath.Join(dir, "registry.json"))
	t.Setenv("TRAWLER_X_BEARER_TOKEN", "")
	t.Setenv("TRAWLER_JUDGE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	deps := modkit.Deps{Log: logger.New(logger.Options{Level: "error"}), Cfg: config.New()}
	m, err := New(context.Background(), deps)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p := m.Ports().(Ports)
	if p.Runner == nil || p.Reader == nil || p.Registry == nil {
		t.Fatalf("ports = %+v", p)
	}
	r := module.MustPortsOf[domain.Reader](m)
	if _, err := r.LatestDigest(context.Background()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("fresh data dir latest = %v", err)
	}
}

func TestNewRejectsBadRubric(t *testing.T) {
	t.Setenv("TRAWLER_RUBRIC_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	deps := modkit.Deps{Log: logger.New(logger.Options{Level: "error"}), Cfg: config.New()}
	if _, err := New(context.Background(), deps); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad rubric = %v", err)
	}
}
