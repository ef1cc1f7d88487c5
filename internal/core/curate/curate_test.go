package curate

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"trawler/internal/core/discovery"
	"trawler/internal/core/rubric"
)

func scored(id string, total float64) discovery.CuratedDiscovery {
	return discovery.CuratedDiscovery{
		Candidate: discovery.Candidate{ID: id, Title: id},
		Score:     discovery.QualityScore{Total: total, RealUsage: 1, Documentation: 1, InstallClarity: 1},
	}
}

func ids(ds []discovery.CuratedDiscovery) string {
	s := ""
	for _, d := range ds {
		s += d.ID + ","
	}
	return s
}

func TestPartitionBounds(t *testing.T) {
	in := []discovery.CuratedDiscovery{
		scored("a", 3.0), scored("b", 4.5), scored("c", 3.0), scored("d", 2.9),
		scored("e", 1.0), scored("f", 3.5), scored("g", 2.0), scored("h", 0.2),
	}
	r := Partition(in, 3, 3)

	if ids(r.Picks) != "b,f,a," {
		t.Fatalf("picks = %s", ids(r.Picks))
	}
	if ids(r.Overflow) != "c," {
		t.Fatalf("overflow = %s", ids(r.Overflow))
	}
	if ids(r.OnRadar) != "d,g," || ids(r.Skipped) != "e,h," {
		t.Fatalf("radar = %s skipped = %s", ids(r.OnRadar), ids(r.Skipped))
	}
	for _, p := range r.Picks {
		if p.Score.Total < 3 {
			t.Fatalf("pick below min score: %+v", p)
		}
	}
	if r.IsQuietWeek {
		t.Fatalf("three picks is not a quiet week")
	}
	if len(r.Ranked) != len(in) {
		t.Fatalf("ranked lost entries")
	}
}

func TestPartitionSideListsCapAtFive(t *testing.T) {
	var in []discovery.CuratedDiscovery
	for i := range 12 {
		in = append(in, scored(fmt.Sprint("r", i), 2.5), scored(fmt.Sprint("s", i), 1))
	}
	r := Partition(in, 3, 6)
	if len(r.Picks) != 0 || !r.IsQuietWeek {
		t.Fatalf("no picks should be a quiet week")
	}
	if len(r.OnRadar) != 5 || len(r.Skipped) != 5 {
		t.Fatalf("radar %d skipped %d", len(r.OnRadar), len(r.Skipped))
	}
	if r.OnRadar[0].ID != "r0" || r.Skipped[4].ID != "s4" {
		t.Fatalf("ties must keep input order")
	}
}

func TestSkipReasonPriority(t *testing.T) {
	for _, tc := range []struct {
		q    discovery.QualityScore
		want string
	}{
		{discovery.QualityScore{RealUsage: 0.1, Documentation: 0, InstallClarity: 0}, ReasonLowUsage},
		{discovery.QualityScore{RealUsage: 0.3, Documentation: 0.2, InstallClarity: 0}, ReasonPoorDocs},
		{discovery.QualityScore{RealUsage: 0.5, Documentation: 0.4, InstallClarity: 0}, ReasonUnclear},
		{discovery.QualityScore{RealUsage: 0.5, Documentation: 0.4, InstallClarity: 0.5}, ReasonBelow},
	} {
		if got := SkipReason(tc.q); got != tc.want {
			t.Fatalf("%+v: got %q want %q", tc.q, got, tc.want)
		}
	}
}

type countingMeta struct {
	inflight, peak atomic.Int32
	calls          atomic.Int32
}

func (m *countingMeta) Repo(context.Context, string) (*rubric.RepoMetadata, error) {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	m.calls.Add(1)
	time.Sleep(2 * time.Millisecond)
	return &rubric.RepoMetadata{Stars: 2000, Readme: "# x"}, nil
}

func TestCurateScoresThroughPool(t *testing.T) {
	meta := &countingMeta{}
	e := New(rubric.NewScorer(rubric.MustDefault(), meta), Options{Workers: 2, LookupInterval: time.Millisecond})

	var cands []discovery.Candidate
	for i := range 6 {
		cands = append(cands, discovery.Candidate{
			ID:     fmt.Sprint(i),
			Title:  fmt.Sprint("repo ", i),
			Source: discovery.Source{URL: fmt.Sprintf("https://github.com/o/r%d", i)},
		})
	}
	cands = append(cands, discovery.Candidate{ID: "post", Title: "post", Source: discovery.Source{URL: "https://blog.example/p"}})

	r := e.Curate(context.Background(), cands, 3, 6)
	if got := meta.calls.Load(); got != 6 {
		t.Fatalf("lookups = %d, want 6", got)
	}
	if meta.peak.Load() > 2 {
		t.Fatalf("pool exceeded worker limit: %d", meta.peak.Load())
	}
	if len(r.Ranked) != 7 {
		t.Fatalf("ranked = %d", len(r.Ranked))
	}
	for _, d := range r.Ranked {
		if d.ID != "post" && d.Score.RealUsage < 0.9 {
			t.Fatalf("metadata not folded into %s: %+v", d.ID, d.Score)
		}
	}
}

func TestValuePropPrefersVerdict(t *testing.T) {
	c := discovery.Candidate{OneLiner: "one", Why: "why"}
	if valueProp(c) != "why" {
		t.Fatalf("why should beat one liner")
	}
	c.Verdict = &discovery.JudgeVerdict{ValueProp: "judge"}
	if valueProp(c) != "judge" {
		t.Fatalf("verdict value prop should win")
	}
}
