package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/store"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func digest(id string, date time.Time, urls ...string) discovery.Digest {
	d := discovery.Digest{ID: id, Name: "Weekly", Date: date, RunID: "run-" + id}
	for _, u := range urls {
		d.Discoveries = append(d.Discoveries, discovery.CuratedDiscovery{
			Candidate: discovery.Candidate{Title: u, Source: discovery.Source{URL: u}},
		})
	}
	return d
}

func TestDigestWriteOnce(t *testing.T) {
	ctx := context.Background()
	f := NewFiles(t.TempDir(), clock)

	d := digest("d1", now, "https://github.com/acme/one")
	if err := f.SaveDigest(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.SaveDigest(ctx, d); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second save = %v", err)
	}
	got, err := f.Digest(ctx, "d1")
	if err != nil || got.ID != "d1" || len(got.Discoveries) != 1 {
		t.Fatalf("read back = %+v, %v", got, err)
	}
	if _, err := f.Digest(ctx, "../escape"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("path escape = %v", err)
	}
	if _, err := f.Digest(ctx, "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing = %v", err)
	}
}

func TestLatestAndRecentKeys(t *testing.T) {
	ctx := context.Background()
	f := NewFiles(t.TempDir(), clock)

	if _, err := f.LatestDigest(ctx); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty latest = %v", err)
	}
	for i, d := range []discovery.Digest{
		digest("a", now.AddDate(0, 0, -14), "https://github.com/acme/a"),
		digest("c", now, "https://github.com/acme/c"),
		digest("b", now.AddDate(0, 0, -7), "https://github.com/acme/b"),
	} {
		if err := f.SaveDigest(ctx, d); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	latest, err := f.LatestDigest(ctx)
	if err != nil || latest.ID != "c" {
		t.Fatalf("latest = %q, %v", latest.ID, err)
	}
	keys, err := f.RecentKeys(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(keys) != 2 || keys[0] != discovery.Key(latest.Discoveries[0].Candidate) {
		t.Fatalf("recent keys = %v", keys)
	}
}

func TestDecisionLogNaming(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFiles(dir, clock)

	ok := discovery.DecisionLog{RunID: "r1", Outcome: discovery.OutcomeSuccess}
	failed := discovery.DecisionLog{RunID: "r2", Outcome: discovery.OutcomeFailed, Error: "floor"}
	for _, l := range []discovery.DecisionLog{ok, failed} {
		if err := f.SaveDecisionLog(ctx, l); err != nil {
			t.Fatalf("save %s: %v", l.RunID, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "decisions", FailedPrefix+"r2.json")); err != nil {
		t.Fatalf("failed log name: %v", err)
	}
	got, err := f.DecisionLog(ctx, "r2")
	if err != nil || got.Error != "floor" {
		t.Fatalf("failed log read = %+v, %v", got, err)
	}
	if err := f.SaveDecisionLog(ctx, ok); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("rewrite = %v", err)
	}
}

func TestSeenRoundTripAndCorruption(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFiles(dir, clock)

	s, err := f.LoadSeen(ctx)
	if err != nil || s.Len() != 0 {
		t.Fatalf("fresh seen = %d, %v", s.Len(), err)
	}
	s.Mark("x1", "x2")
	if err := f.SaveSeen(ctx, s); err != nil {
		t.Fatalf("save seen: %v", err)
	}
	back, err := f.LoadSeen(ctx)
	if err != nil || !back.Has("x1") || !back.Has("x2") {
		t.Fatalf("seen round trip failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "seen.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	back, err = f.LoadSeen(ctx)
	if !perr.IsCode(err, perr.ErrorCodeJSON) || back == nil || back.Len() != 0 {
		t.Fatalf("corrupt seen = %v", err)
	}
}

type fakeCH struct {
	execs []string
	table string
	rows  [][]any
	err   error
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return f.err
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return f.err
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                              { return nil }

func TestClickHouseArchive(t *testing.T) {
	ctx := context.Background()
	score := 3.5
	ch := &fakeCH{}
	a := NewClickHouse(ch)
	if err := a.Migrate(ctx); err != nil || len(ch.execs) != 1 {
		t.Fatalf("migrate: %v", err)
	}

	log := discovery.DecisionLog{
		RunID: "r1", DigestID: "d1", Outcome: discovery.OutcomeSuccess, DryRun: true, StartedAt: now,
		Entries: []discovery.DecisionEntry{
			{Key: "k1", Title: "one", Verdict: discovery.VerdictInclude, Score: &score,
				Judge: &discovery.JudgeVerdict{Actionable: true, Confidence: 0.9}},
			{Key: "k2", Title: "two", Verdict: discovery.VerdictExclude, Failing: []string{"novelty"}},
		},
	}
	if err := a.ArchiveDecisions(ctx, log); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if ch.table != DecisionsTable || len(ch.rows) != 2 {
		t.Fatalf("insert %s rows %d", ch.table, len(ch.rows))
	}
	r0, r1 := ch.rows[0], ch.rows[1]
	if r0[3].(uint8) != 1 || *r0[13].(*float64) != 3.5 || *r0[14].(*float64) != 0.9 {
		t.Fatalf("row 0 = %v", r0)
	}
	if len(r0[12].([]string)) != 0 || r1[12].([]string)[0] != "novelty" || r1[14].(*float64) != nil {
		t.Fatalf("row 1 = %v", r1)
	}

	ch.err = errors.New("down")
	if err := a.ArchiveDecisions(ctx, log); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("archive failure = %v", err)
	}
}
