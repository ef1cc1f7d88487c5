// Package service implements the budget capped alternating fetcher. Odd
// batches read the subscribed feed, even batches run the next search query,
// and either side stands in for the other once it is exhausted
package service

import (
	"cmp"
	"context"

	"trawler/internal/adapters/sources"
	"trawler/internal/core/discovery"
	"trawler/internal/core/verdict"
	"trawler/internal/platform/logger"
	"trawler/internal/services/fetcher/domain"
	jdom "trawler/internal/services/judge/domain"

	"golang.org/x/sync/errgroup"
)

// Defaults
const (
	DefaultBatchSize     = 15
	DefaultMaxBatches    = 8
	DefaultEnrichWorkers = 4
)

// ReasonNoTitle excludes paid items that carried no usable text
const ReasonNoTitle = "no title"

// Config for the fetcher
type Config struct {
	BatchSize     int
	MaxBatches    int
	Queries       []string
	EnrichWorkers int
	JudgeWorkers  int
}

// Service drives a metered source under a run budget
type Service struct {
	src    sources.Metered
	enrich domain.Enricher
	judge  jdom.Judge
	cfg    Config
}

// New constructs the fetcher; src nil disables it and enrich may be nil
func New(src sources.Metered, enrich domain.Enricher, judge jdom.Judge, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxBatches <= 0 {
		cfg.MaxBatches = DefaultMaxBatches
	}
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = DefaultEnrichWorkers
	}
	return &Service{src: src, enrich: enrich, judge: judge, cfg: cfg}
}

// Enabled reports whether a metered source is configured
func (s *Service) Enabled() bool { return s != nil && s.src != nil }

// batchCost is the estimated spend of one more full batch
func (s *Service) batchCost() float64 {
	return float64(s.cfg.BatchSize) * s.src.CostPerItem()
}

type cursor struct {
	token      string
	feedDone   bool
	query      int
	searchDone bool
}

// Fetch alternates feed and search batches until the target is met, the
// batch cap is hit, both sides are exhausted or the budget cannot cover
// half of another batch. A full batch is reserved before every call and
// settled against the fresh items it returned
func (s *Service) Fetch(ctx context.Context, req domain.Request) domain.Result {
	var res domain.Result
	if !s.Enabled() {
		res.Stop = domain.StopDisabled
		return res
	}
	log := logger.C(ctx)
	cur := cursor{searchDone: len(s.cfg.Queries) == 0}

	for n := 1; ; n++ {
		if stop, ok := s.shouldStop(ctx, req, &res, cur); ok {
			res.Stop = stop
			break
		}

		kind := domain.KindFeed
		if n%2 == 0 {
			kind = domain.KindSearch
		}
		if kind == domain.KindFeed && cur.feedDone {
			kind = domain.KindSearch
		} else if kind == domain.KindSearch && cur.searchDone {
			kind = domain.KindFeed
		}

		if !req.Run.Budget.TrySpend(s.batchCost()) {
			res.Stop = domain.StopBudget
			break
		}

		var (
			page discovery.Page
			err  error
		)
		if kind == domain.KindFeed {
			page, err = s.src.Feed(ctx, cur.token, s.cfg.BatchSize)
			cur.token = page.Next
			if err != nil || len(page.Items) == 0 || page.Next == "" {
				cur.feedDone = true
			}
		} else {
			q := s.cfg.Queries[cur.query]
			page, err = s.src.Search(ctx, q, s.cfg.BatchSize)
			cur.query++
			cur.searchDone = cur.query >= len(s.cfg.Queries)
		}
		res.Batches++

		if err != nil {
			req.Run.Budget.Refund(s.batchCost())
			log.Warn().Err(err).Str("kind", kind).Int("batch", n).Msg("fetcher: batch failed")
			continue
		}
		s.process(ctx, req, page.Items, &res)
	}

	log.Info().
		Int("batches", res.Batches).
		Int("fetched", res.Fetched).
		Int("accepted", len(res.Accepted)).
		Str("stop", string(res.Stop)).
		Float64("spent", req.Run.Budget.Spent()).
		Msg("fetcher: done")
	return res
}

func (s *Service) shouldStop(ctx context.Context, req domain.Request, res *domain.Result, cur cursor) (domain.StopReason, bool) {
	switch {
	case ctx.Err() != nil:
		return domain.StopCanceled, true
	case len(res.Accepted) >= req.Target:
		return domain.StopTarget, true
	case res.Batches >= s.cfg.MaxBatches:
		return domain.StopBatchCap, true
	case cur.feedDone && cur.searchDone:
		return domain.StopExhausted, true
	case req.Run.Budget.Remaining() < s.batchCost()/2:
		return domain.StopBudget, true
	}
	return "", false
}

// Search runs each query once as a search batch, stopping early on budget
// It serves the last resort backfill
func (s *Service) Search(ctx context.Context, req domain.Request, queries []string) domain.Result {
	var res domain.Result
	if !s.Enabled() {
		res.Stop = domain.StopDisabled
		return res
	}
	res.Stop = domain.StopExhausted
	for _, q := range queries {
		if ctx.Err() != nil {
			res.Stop = domain.StopCanceled
			break
		}
		if req.Run.Budget.Remaining() < s.batchCost()/2 || !req.Run.Budget.TrySpend(s.batchCost()) {
			res.Stop = domain.StopBudget
			break
		}
		page, err := s.src.Search(ctx, q, s.cfg.BatchSize)
		res.Batches++
		if err != nil {
			req.Run.Budget.Refund(s.batchCost())
			logger.C(ctx).Warn().Err(err).Str("query", q).Msg("fetcher: backfill search failed")
			continue
		}
		s.process(ctx, req, page.Items, &res)
	}
	return res
}

// process runs one reserved batch through seen filtering, settlement,
// enrichment, dedup, judging and the acceptance rule. Only fresh items are
// charged; the rest of the reservation goes back to the budget
func (s *Service) process(ctx context.Context, req domain.Request, items []discovery.RawItem, res *domain.Result) {
	rc := req.Run
	if len(items) > s.cfg.BatchSize {
		items = items[:s.cfg.BatchSize]
	}
	fresh := unseen(rc.Seen.Unseen(ids(items)), items)
	rc.Budget.Refund(float64(s.cfg.BatchSize-len(fresh)) * s.src.CostPerItem())
	if len(fresh) == 0 {
		return
	}
	rc.Seen.Mark(ids(fresh)...)
	res.Fetched += len(fresh)

	fresh = s.enrichAll(ctx, fresh)

	cands := make([]discovery.Candidate, 0, len(fresh))
	inputs := make([]jdom.Input, 0, len(fresh))
	for _, it := range fresh {
		c := discovery.FromRaw(it, req.Origin)
		if c.Title == "" {
			rc.Decisions.Record(discovery.DecisionEntry{
				Key:     cmp.Or(discovery.Key(c), c.ID),
				URL:     c.Source.URL,
				Origin:  c.Origin,
				Phase:   req.Phase,
				Verdict: discovery.VerdictExclude,
				Reason:  ReasonNoTitle,
			})
			continue
		}
		if req.Dedup != nil {
			if reason, ok := req.Dedup.Admit(c); !ok {
				rc.Decisions.Candidate(c, req.Phase, discovery.VerdictExclude, reason)
				res.Sightings = append(res.Sightings, c)
				continue
			}
		}
		cands = append(cands, c)
		inputs = append(inputs, jdom.FromCandidate(c, it.Context))
	}
	if len(cands) == 0 {
		return
	}

	var verdicts []*discovery.JudgeVerdict
	if s.judge != nil {
		verdicts = s.judge.JudgeBatch(ctx, inputs, s.cfg.JudgeWorkers)
	} else {
		verdicts = make([]*discovery.JudgeVerdict, len(cands))
	}

	for i, c := range cands {
		d := verdict.Decide(verdicts[i], verdict.Keywords(c))
		out := verdict.Apply(c, verdicts[i], d)
		rc.Decisions.Decided(out, req.Phase, d.Verdict(), d.Reason, d.Failing)
		res.Observed = append(res.Observed, out)
		if d.Passes() {
			res.Accepted = append(res.Accepted, out)
		}
	}
}

// enrichAll resolves links for every item with a small pool; order is kept
func (s *Service) enrichAll(ctx context.Context, items []discovery.RawItem) []discovery.RawItem {
	if s.enrich == nil {
		return items
	}
	out := make([]discovery.RawItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnrichWorkers)
	for i, it := range items {
		g.Go(func() error {
			out[i] = s.enrich.Enrich(gctx, it)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func ids(items []discovery.RawItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// unseen keeps the items whose ids survived the seen filter, in order
func unseen(keep []string, items []discovery.RawItem) []discovery.RawItem {
	want := make(map[string]bool, len(keep))
	for _, id := range keep {
		want[id] = true
	}
	out := make([]discovery.RawItem, 0, len(keep))
	for _, it := range items {
		if want[it.ID] {
			out = append(out, it)
			delete(want, it.ID)
		}
	}
	return out
}
