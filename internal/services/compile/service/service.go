// Package service runs a compilation: seven ordered phases that gather,
// judge, dedupe and curate candidates into one digest, leaving a decision
// log behind whether the run succeeds or not
package service

import (
	"context"
	"sync"
	"time"

	"trawler/internal/adapters/sources"
	"trawler/internal/core/curate"
	"trawler/internal/core/discovery"
	"trawler/internal/core/runctx"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
	"trawler/internal/platform/net/http/bind"
	"trawler/internal/services/compile/domain"
	fdom "trawler/internal/services/fetcher/domain"
	jdom "trawler/internal/services/judge/domain"
	regsvc "trawler/internal/services/registry/service"

	"github.com/google/uuid"
)

// Defaults
const (
	DefaultMaxPicks      = 6
	DefaultMinPicks      = 6
	DefaultMinScore      = 3.0
	DefaultBudgetCap     = 1.0
	DefaultBackfillCount = 2
	DefaultName          = "Weekly Discoveries"
)

// Fetcher is the budget capped metered source driver
type Fetcher interface {
	Enabled() bool
	Fetch(ctx context.Context, req fdom.Request) fdom.Result
	Search(ctx context.Context, req fdom.Request, queries []string) fdom.Result
}

// Curator scores and partitions candidates
type Curator interface {
	Curate(ctx context.Context, cands []discovery.Candidate, minScore float64, maxPicks int) curate.Result
}

// Config for the compile service
type Config struct {
	Name            string
	MaxPicks        int
	MinPicks        int
	MinScore        float64
	BudgetCap       float64
	BackfillQueries []string
	BackfillCount   int
	JudgeWorkers    int

	Now   func() time.Time
	NewID func() string
}

// Deps are the collaborators of a run. Editor, Fetcher, Judge and Archive
// may be nil
type Deps struct {
	Editor    sources.Source
	Free      []sources.Source
	Fetcher   Fetcher
	Judge     jdom.Judge
	Registry  *regsvc.Service
	Curator   Curator
	Artifacts domain.Artifacts
	Archive   domain.Archive
}

// Service runs compilations one at a time
type Service struct {
	cfg  Config
	deps Deps
	mu   sync.Mutex
}

// New constructs the compile service
func New(deps Deps, cfg Config) *Service {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.MaxPicks <= 0 {
		cfg.MaxPicks = DefaultMaxPicks
	}
	if cfg.MinPicks <= 0 {
		cfg.MinPicks = DefaultMinPicks
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultMinScore
	}
	if cfg.BudgetCap <= 0 {
		cfg.BudgetCap = DefaultBudgetCap
	}
	if cfg.BackfillCount <= 0 {
		cfg.BackfillCount = DefaultBackfillCount
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString() }
	}
	return &Service{cfg: cfg, deps: deps}
}

// settings are the effective knobs of one run
type settings struct {
	name      string
	maxPicks  int
	minPicks  int
	minScore  float64
	budgetCap float64
	dryRun    bool
}

func (s *Service) resolve(o domain.RunOptions) settings {
	st := settings{
		name:      s.cfg.Name,
		maxPicks:  s.cfg.MaxPicks,
		minPicks:  s.cfg.MinPicks,
		minScore:  s.cfg.MinScore,
		budgetCap: s.cfg.BudgetCap,
		dryRun:    o.DryRun,
	}
	if o.Name != "" {
		st.name = o.Name
	}
	if o.MaxPicks > 0 {
		st.maxPicks = o.MaxPicks
	}
	if o.MinPicks > 0 {
		st.minPicks = o.MinPicks
	}
	if o.MinScore > 0 {
		st.minScore = o.MinScore
	}
	if o.BudgetCap > 0 {
		st.budgetCap = o.BudgetCap
	}
	return st
}

// Run compiles one digest. Only one run may be active; a concurrent call
// gets domain.ErrRunInProgress. The only failure a completed run reports is
// *domain.QualityFloorError
func (s *Service) Run(ctx context.Context, opts domain.RunOptions) (domain.Result, error) {
	if !s.mu.TryLock() {
		return domain.Result{}, domain.ErrRunInProgress
	}
	defer s.mu.Unlock()

	if err := bind.Struct(opts); err != nil {
		return domain.Result{}, err
	}
	st := s.resolve(opts)

	runID, digestID := s.cfg.NewID(), s.cfg.NewID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	seen, err := s.deps.Artifacts.LoadSeen(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("compile: seen set unreadable, starting fresh")
	}
	rc := runctx.New(runID, digestID, st.budgetCap, seen, s.cfg.Now)
	rc.DryRun = st.dryRun
	rc.Decisions.SetDryRun(st.dryRun)
	rc.Decisions.OnRecord(func(e discovery.DecisionEntry) {
		logger.C(ctx).Debug().
			Str("key", e.Key).
			Str("phase", e.Phase).
			Str("verdict", string(e.Verdict)).
			Str("reason", e.Reason).
			Msg("decision")
	})

	sess, err := s.deps.Registry.Open(ctx)
	if err != nil {
		return domain.Result{}, perr.Wrap(err, perr.ErrorCodeDB, "compile: open registry")
	}

	log.Info().
		Str("digest_id", digestID).
		Int("max_picks", st.maxPicks).
		Int("min_picks", st.minPicks).
		Float64("budget", st.budgetCap).
		Bool("dry_run", st.dryRun).
		Msg("compile: run started")

	r := &run{svc: s, rc: rc, sess: sess, st: st}
	return r.execute(ctx)
}
