// Package curate ranks scored candidates and splits them into picks, the
// on radar list and the skipped list
package curate

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"trawler/internal/core/discovery"
	"trawler/internal/core/rubric"
)

// Defaults
const (
	DefaultWorkers        = 3
	DefaultLookupInterval = 500 * time.Millisecond
	RadarFloor            = 2.0
	SideListSize          = 5
	QuietWeekBelow        = 3
)

// Skip reasons, in priority order
const (
	ReasonLowUsage     = "low real-world usage"
	ReasonPoorDocs     = "poor documentation"
	ReasonUnclear      = "unclear install"
	ReasonBelow        = "below quality threshold"
	ReasonOverPickCap  = "over pick limit"
	lowUsageThreshold  = 0.3
	poorDocsThreshold  = 0.3
	unclearInstallUpTo = 0.5
)

// Options tunes the scoring pool
type Options struct {
	Workers        int
	LookupInterval time.Duration
}

// Result is the partitioned outcome
type Result struct {
	Picks       []discovery.CuratedDiscovery
	OnRadar     []discovery.CuratedDiscovery
	Skipped     []discovery.CuratedDiscovery
	Overflow    []discovery.CuratedDiscovery
	Ranked      []discovery.CuratedDiscovery // every candidate, best first
	IsQuietWeek bool
}

// Engine scores and partitions candidates
type Engine struct {
	scorer  *rubric.Scorer
	workers int
	limiter *rate.Limiter
}

// New builds an engine; zero options take the defaults
func New(s *rubric.Scorer, opt Options) *Engine {
	if opt.Workers <= 0 {
		opt.Workers = DefaultWorkers
	}
	if opt.LookupInterval <= 0 {
		opt.LookupInterval = DefaultLookupInterval
	}
	return &Engine{
		scorer:  s,
		workers: opt.Workers,
		limiter: rate.NewLimiter(rate.Every(opt.LookupInterval), 1),
	}
}

// Curate scores every candidate and partitions them. picks holds at most
// maxPicks entries, all with Total >= minScore
func (e *Engine) Curate(ctx context.Context, cands []discovery.Candidate, minScore float64, maxPicks int) Result {
	scored := e.scoreAll(ctx, cands)
	return Partition(scored, minScore, maxPicks)
}

// scoreAll runs the bounded pool; metadata lookups wait on the limiter
func (e *Engine) scoreAll(ctx context.Context, cands []discovery.Candidate) []discovery.CuratedDiscovery {
	out := make([]discovery.CuratedDiscovery, len(cands))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, c := range cands {
		g.Go(func() error {
			var md *rubric.RepoMetadata
			if e.scorer.NeedsLookup(c) && e.limiter.Wait(ctx) == nil {
				md = e.scorer.Lookup(ctx, c)
			}
			out[i] = discovery.CuratedDiscovery{
				Candidate: c,
				Score:     e.scorer.Compute(c, md),
				ValueProp: valueProp(c),
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Partition sorts scored entries best first, ties keeping input order, and
// splits them
func Partition(scored []discovery.CuratedDiscovery, minScore float64, maxPicks int) Result {
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b discovery.CuratedDiscovery) int {
		switch {
		case a.Score.Total > b.Score.Total:
			return -1
		case a.Score.Total < b.Score.Total:
			return 1
		}
		return 0
	})

	var r Result
	for i := range ranked {
		d := &ranked[i]
		switch t := d.Score.Total; {
		case t >= minScore && len(r.Picks) < maxPicks:
			d.SkipReason = ""
			r.Picks = append(r.Picks, *d)
		case t >= minScore:
			d.SkipReason = ReasonOverPickCap
			r.Overflow = append(r.Overflow, *d)
		case t >= RadarFloor:
			d.SkipReason = SkipReason(d.Score)
			if len(r.OnRadar) < SideListSize {
				r.OnRadar = append(r.OnRadar, *d)
			}
		default:
			d.SkipReason = SkipReason(d.Score)
			if len(r.Skipped) < SideListSize {
				r.Skipped = append(r.Skipped, *d)
			}
		}
	}
	r.Ranked = ranked
	r.IsQuietWeek = len(r.Picks) < QuietWeekBelow
	return r
}

// SkipReason picks the single most actionable reason a candidate fell short
func SkipReason(q discovery.QualityScore) string {
	switch {
	case q.RealUsage < lowUsageThreshold:
		return ReasonLowUsage
	case q.Documentation < poorDocsThreshold:
		return ReasonPoorDocs
	case q.InstallClarity < unclearInstallUpTo:
		return ReasonUnclear
	default:
		return ReasonBelow
	}
}

func valueProp(c discovery.Candidate) string {
	if c.Verdict != nil && c.Verdict.ValueProp != "" {
		return c.Verdict.ValueProp
	}
	if c.Why != "" {
		return c.Why
	}
	return c.OneLiner
}
