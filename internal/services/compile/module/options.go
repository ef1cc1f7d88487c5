package module

import (
	"time"

	"trawler/internal/platform/config"
)

// DefaultFeeds are the RSS feeds read when TRAWLER_RSS_FEEDS is unset
var DefaultFeeds = []string{
	"https://hnrss.org/show?points=50",
	"https://www.producthunt.com/feed?category=developer-tools",
	"https://github.blog/changelog/feed/",
}

// DefaultRepoQueries feed the GitHub search source
var DefaultRepoQueries = []string{
	"topic:mcp-server",
	"topic:cli language:go",
	"topic:self-hosted",
	"topic:llm-tools",
}

// DefaultBackfillQueries are the last resort metered searches
var DefaultBackfillQueries = []string{
	"just released open source",
	"github.com new tool",
	"npm install new cli",
}

// Options holds configuration settings for the compile module
type Options struct {
	Name      string
	DataDir   string
	MaxPicks  int
	MinPicks  int
	MinScore  float64
	BudgetCap float64

	EditorPath string
	RubricPath string

	RSSFeeds    []string
	RSSKeywords []string
	RSSScripts  []string
	HNEnabled   bool
	HNMinPoints int
	RepoQueries []string
	RepoMinStar int

	GitHubTokens  string
	GitHubTimeout time.Duration

	CurateWorkers  int
	LookupInterval time.Duration

	BackfillQueries []string
	BackfillCount   int
	JudgeWorkers    int
	SourceTimeout   time.Duration
}

// FromConfig reads TRAWLER_* compile settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TRAWLER_")
	return Options{
		Name:      c.MayString("DIGEST_NAME", "Weekly Discoveries"),
		DataDir:   c.MayString("DATA_DIR", "data"),
		MaxPicks:  c.MayInt("MAX_PICKS", 6),
		MinPicks:  c.MayInt("MIN_PICKS", 6),
		MinScore:  c.MayFloat64("MIN_SCORE", 3),
		BudgetCap: c.MayFloat64("BUDGET_CAP", 1.0),

		EditorPath: c.MayString("EDITOR_PICKS", "data/editor-picks.json"),
		RubricPath: c.MayString("RUBRIC_FILE", ""),

		RSSFeeds:    c.MayCSV("RSS_FEEDS", DefaultFeeds),
		RSSKeywords: c.MayCSV("RSS_KEYWORDS", nil),
		RSSScripts:  c.MayCSV("RSS_SCRIPTS", []string{"Latin"}),
		HNEnabled:   c.MayBool("HN_ENABLED", true),
		HNMinPoints: c.MayInt("HN_MIN_POINTS", 20),
		RepoQueries: c.MayLines("GHSEARCH_QUERIES", DefaultRepoQueries),
		RepoMinStar: c.MayInt("GHSEARCH_MIN_STARS", 25),

		GitHubTokens:  c.MayString("GITHUB_TOKENS", cfg.MayString("GITHUB_TOKEN", "")),
		GitHubTimeout: c.MayDuration("GITHUB_TIMEOUT", 15*time.Second),

		CurateWorkers:  c.MayInt("CURATE_WORKERS", 3),
		LookupInterval: c.MayDuration("LOOKUP_INTERVAL", 500*time.Millisecond),

		BackfillQueries: c.MayLines("BACKFILL_QUERIES", DefaultBackfillQueries),
		BackfillCount:   c.MayInt("BACKFILL_COUNT", 2),
		JudgeWorkers:    c.MayInt("JUDGE_WORKERS", 5),
		SourceTimeout:   c.MayDuration("SOURCE_TIMEOUT", 15*time.Second),
	}
}
