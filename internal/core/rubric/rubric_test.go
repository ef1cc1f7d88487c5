package rubric

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"trawler/internal/core/discovery"
	kit "trawler/internal/platform/testkit"
)

type fakeMeta struct {
	md    *RepoMetadata
	err   error
	calls int
}

func (f *fakeMeta) Repo(_ context.Context, slug string) (*RepoMetadata, error) {
	f.calls++
	return f.md, f.err
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaultCompiles(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("default rubric: %v", err)
	}
	if r.MinScore != 3 {
		t.Fatalf("min score = %v", r.MinScore)
	}
	if len(r.Novelty) != 3 || r.Novelty[0].Name != "strong" {
		t.Fatalf("novelty tiers out of order: %+v", r.Novelty)
	}
}

func TestParseRejects(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatalf("empty payload must fail")
	}
	if _, err := Parse([]byte("version: 9\nutility: {divisor: 1}")); err == nil {
		t.Fatalf("unknown version must fail")
	}
	if _, err := Parse([]byte("version: 1\nutility: {divisor: 0}")); err == nil {
		t.Fatalf("zero divisor must fail")
	}
	_, err := Parse([]byte("version: 1\nutility: {divisor: 1}\ninstall: {recognized: ['(']}"))
	kit.MustContain(t, err.Error(), "install pattern")
}

func TestLoadFile(t *testing.T) {
	path := kit.WriteFile(t, "rubric.yaml", "version: 1\nmin_score: 2.5\nutility: {divisor: 10}\n")
	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.MinScore != 2.5 || r.UtilityDivisor != 10 {
		t.Fatalf("file values not applied: %+v", r)
	}
	if _, err := Load(path + ".missing"); err == nil {
		t.Fatalf("missing file must fail")
	}
}

func TestMatcherWordBoundaries(t *testing.T) {
	m := newMatcher([]string{"app", "api", "mcp server"})
	got := m.match("a happy rapid mcp server with an api")
	if strings.Join(got, ",") != "api,mcp server" {
		t.Fatalf("matches = %v", got)
	}
}

func TestScoreIsSumOfParts(t *testing.T) {
	s := NewScorer(MustDefault(), nil)
	cases := []discovery.Candidate{
		{},
		{Title: "Tiny", Category: discovery.CategoryTool},
		{
			Title:    "An MCP server that automates deploy",
			Category: discovery.CategoryIntegration,
			OneLiner: strings.Repeat("open source, zero config and faster. ", 10),
			Install:  discovery.Install{Steps: []string{"npx mcp-deploy"}},
			Signals:  discovery.Signals{Engagement: 5000},
		},
		{
			Title:   "list of links",
			Install: discovery.Install{Steps: []string{"read it"}},
			Signals: discovery.Signals{Engagement: 42},
		},
	}
	for i, c := range cases {
		q := s.Score(context.Background(), c)
		for name, v := range map[string]float64{
			"novelty": q.Novelty, "usage": q.RealUsage, "install": q.InstallClarity,
			"docs": q.Documentation, "utility": q.GenuineUtility,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("case %d %s = %v out of range", i, name, v)
			}
		}
		want := math.Round((q.Novelty+q.RealUsage+q.InstallClarity+q.Documentation+q.GenuineUtility)*10) / 10
		if !near(q.Total, want) {
			t.Fatalf("case %d total %v != %v", i, q.Total, want)
		}
	}
}

func TestArchivedZeroesRealUsage(t *testing.T) {
	meta := &fakeMeta{md: &RepoMetadata{
		Stars: 90000, Forks: 500, OpenIssues: 80, Archived: true, PushedAt: time.Now(),
	}}
	s := NewScorer(MustDefault(), meta)
	c := discovery.Candidate{
		Title:   "Huge repo",
		Source:  discovery.Source{URL: "https://github.com/acme/huge/tree/main"},
		Signals: discovery.Signals{Engagement: 10000, Trending: true},
	}
	q := s.Score(context.Background(), c)
	if q.RealUsage != 0 {
		t.Fatalf("archived real usage = %v", q.RealUsage)
	}
	if meta.calls != 1 {
		t.Fatalf("lookups = %d", meta.calls)
	}
	kit.MustContain(t, strings.Join(q.Reasons, ";"), "archived repository")
}

func TestRealUsageBandsAndBonuses(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewScorer(MustDefault(), nil).WithClock(func() time.Time { return now })

	for _, tc := range []struct {
		eng  int
		want float64
	}{{0, 0.1}, {9, 0.1}, {10, 0.3}, {199, 0.5}, {999, 0.7}, {1000, 0.9}} {
		var why []string
		got := s.realUsage(discovery.Candidate{Signals: discovery.Signals{Engagement: tc.eng}}, nil, &why)
		if !near(got, tc.want) {
			t.Fatalf("engagement %d: got %v want %v", tc.eng, got, tc.want)
		}
	}

	md := &RepoMetadata{Stars: 300, Forks: 10, OpenIssues: 5, PushedAt: now.Add(-48 * time.Hour)}
	var why []string
	if got := s.realUsage(discovery.Candidate{}, md, &why); !near(got, 0.95) {
		t.Fatalf("bonuses: got %v", got)
	}
	md.Stars = 5000
	if got := s.realUsage(discovery.Candidate{}, md, &why); got != 1 {
		t.Fatalf("usage must cap at 1, got %v", got)
	}
}

func TestInstallClarity(t *testing.T) {
	s := NewScorer(MustDefault(), nil)
	for _, tc := range []struct {
		steps []string
		want  float64
	}{
		{nil, 0},
		{[]string{"See README."}, 0},
		{[]string{"download it", "run it"}, 0.5},
		{[]string{"download it", "pip install trawl"}, 1},
		{[]string{"git clone https://github.com/a/b"}, 1},
		{[]string{"docker run -p 80:80 img"}, 1},
	} {
		var why []string
		got := s.installClarity(discovery.Candidate{Install: discovery.Install{Steps: tc.steps}}, &why)
		if got != tc.want {
			t.Fatalf("%v: got %v want %v", tc.steps, got, tc.want)
		}
	}
}

func TestDocumentation(t *testing.T) {
	s := NewScorer(MustDefault(), nil)
	readme := "# Thing\n\n## Installation\n\n```bash\n$ brew install thing\n```\n" + strings.Repeat("words ", 300)
	var why []string
	if got := s.documentation(discovery.Candidate{}, &RepoMetadata{Readme: readme}, &why); !near(got, 1.0) {
		t.Fatalf("full readme = %v", got)
	}
	if got := s.documentation(discovery.Candidate{}, &RepoMetadata{Readme: "short"}, &why); got != 0 {
		t.Fatalf("bare readme = %v", got)
	}

	desc := func(n int) discovery.Candidate { return discovery.Candidate{OneLiner: strings.Repeat("x", n)} }
	for n, want := range map[int]float64{10: 0, 60: 0.2, 150: 0.4, 300: 0.6} {
		if got := s.documentation(desc(n), nil, &why); got != want {
			t.Fatalf("desc %d: got %v want %v", n, got, want)
		}
	}
}

func TestUtilityPoints(t *testing.T) {
	s := NewScorer(MustDefault(), nil)
	var why []string
	if got := s.utility("automates deploy", &why); !near(got, 0.7) {
		t.Fatalf("utility = %v", got)
	}
	if got := s.utility("automates one command zero config", &why); got != 1 {
		t.Fatalf("utility should cap, got %v", got)
	}
}

func TestLookupFailureScoresAsNoMetadata(t *testing.T) {
	meta := &fakeMeta{err: errors.New("boom")}
	s := NewScorer(MustDefault(), meta)
	c := discovery.Candidate{Title: "x", Source: discovery.Source{URL: "https://github.com/a/b"}, Signals: discovery.Signals{Engagement: 60}}
	withErr := s.Score(context.Background(), c)
	plain := NewScorer(MustDefault(), nil).Score(context.Background(), c)
	if withErr.Total != plain.Total {
		t.Fatalf("failed lookup changed score: %v vs %v", withErr.Total, plain.Total)
	}
	if s.NeedsLookup(discovery.Candidate{Source: discovery.Source{URL: "https://example.com/post"}}) {
		t.Fatalf("non repo url must not need lookup")
	}
}
