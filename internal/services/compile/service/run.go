package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"trawler/internal/core/curate"
	"trawler/internal/core/discovery"
	"trawler/internal/core/runctx"
	"trawler/internal/core/verdict"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
	"trawler/internal/services/compile/domain"
	fdom "trawler/internal/services/fetcher/domain"
	jdom "trawler/internal/services/judge/domain"
	regsvc "trawler/internal/services/registry/service"

	"golang.org/x/sync/errgroup"
)

// Phase names, in execution order
const (
	PhaseEditor   = "editor"
	PhasePrimary  = "primary"
	PhaseFree     = "free"
	PhaseEnrich   = "enrich"
	PhaseJudge    = "judge"
	PhaseBackfill = "backfill"
	PhaseAssemble = "assemble"
)

// Decision reasons written during assembly
const (
	ReasonEditorPick = "editor pick"
	ReasonPicked     = "picked"
	ReasonDisplaced  = "displaced by editor pick"
)

// run is the state of one compilation; phases only ever append to it
type run struct {
	svc  *Service
	rc   *runctx.RunContext
	sess *regsvc.Session
	st   settings

	editor   []discovery.Candidate
	vetted   []discovery.Candidate
	unvetted []discovery.Candidate
	observed []discovery.Candidate
	// sightings are candidates dedup turned away; they refresh lastSeen only
	sightings []discovery.Candidate
}

func (r *run) execute(ctx context.Context) (domain.Result, error) {
	r.phase(ctx, PhaseEditor, r.editorPicks)
	r.phase(ctx, PhasePrimary, r.primary)
	r.phase(ctx, PhaseFree, r.free)
	r.phase(ctx, PhaseEnrich, r.enrichEditor)
	r.phase(ctx, PhaseJudge, r.judge)
	r.phase(ctx, PhaseBackfill, r.backfill)
	return r.assemble(logger.WithPhase(ctx, PhaseAssemble))
}

// phase runs one best effort step and reports it; errors never stop the run
func (r *run) phase(ctx context.Context, name string, fn func(context.Context) (int, error)) {
	ctx = logger.WithPhase(ctx, name)
	start := time.Now()
	n, err := fn(ctx)
	rep := discovery.PhaseReport{Name: name, Candidates: n, DurationMs: time.Since(start).Milliseconds()}
	ev := logger.C(ctx).Info()
	if err != nil {
		rep.Err = err.Error()
		ev = logger.C(ctx).Warn().Err(err)
	}
	r.rc.Decisions.Phase(rep)
	ev.Int("candidates", n).Int64("ms", rep.DurationMs).Msg("compile: phase done")
}

func (r *run) deps() Deps { return r.svc.deps }

func (r *run) editorPicks(ctx context.Context) (int, error) {
	src := r.deps().Editor
	if src == nil {
		return 0, nil
	}
	cs, err := src.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range cs {
		c.Origin = discovery.OriginEditor
		if reason, ok := r.sess.Admit(c); !ok {
			if reason == regsvc.ReasonInRun {
				r.sightings = append(r.sightings, c)
				continue
			}
			logger.C(ctx).Warn().Str("title", c.Title).Str("reason", reason).Msg("compile: editor pick kept despite dedup")
		}
		r.editor = append(r.editor, c)
		r.observed = append(r.observed, c)
		r.rc.Decisions.Candidate(c, PhaseEditor, discovery.VerdictInclude, ReasonEditorPick)
	}
	return len(r.editor), nil
}

func (r *run) primary(ctx context.Context) (int, error) {
	f := r.deps().Fetcher
	if f == nil || !f.Enabled() {
		return 0, nil
	}
	res := f.Fetch(ctx, fdom.Request{
		Run:    r.rc,
		Target: max(1, r.st.maxPicks-len(r.editor)),
		Phase:  PhasePrimary,
		Origin: discovery.OriginMetered,
		Dedup:  r.sess,
	})
	r.vetted = append(r.vetted, res.Accepted...)
	r.observed = append(r.observed, res.Observed...)
	r.sightings = append(r.sightings, res.Sightings...)
	logger.C(ctx).Info().Str("stop", string(res.Stop)).Int("batches", res.Batches).Msg("compile: primary source")
	return len(res.Accepted), nil
}

func (r *run) free(ctx context.Context) (int, error) {
	srcs := r.deps().Free
	if len(srcs) == 0 {
		return 0, nil
	}
	results := make([][]discovery.Candidate, len(srcs))
	errs := make([]error, len(srcs))

	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			cs, err := src.Fetch(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Name(), err)
				return nil
			}
			results[i] = cs
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, cs := range results {
		for _, c := range cs {
			if reason, ok := r.sess.Admit(c); !ok {
				r.rc.Decisions.Candidate(c, PhaseFree, discovery.VerdictExclude, reason)
				r.sightings = append(r.sightings, c)
				continue
			}
			r.unvetted = append(r.unvetted, c)
			r.observed = append(r.observed, c)
			n++
		}
	}
	return n, errors.Join(errs...)
}

func (r *run) judgeEnabled() bool {
	j := r.deps().Judge
	return j != nil && j.Enabled()
}

func inputsOf(cs []discovery.Candidate) []jdom.Input {
	out := make([]jdom.Input, len(cs))
	for i, c := range cs {
		out[i] = jdom.FromCandidate(c, "")
	}
	return out
}

// enrichEditor lets the judge rewrite editor copy; picks are never dropped
func (r *run) enrichEditor(ctx context.Context) (int, error) {
	if len(r.editor) == 0 || !r.judgeEnabled() {
		return 0, nil
	}
	vs := r.deps().Judge.JudgeBatch(ctx, inputsOf(r.editor), r.svc.cfg.JudgeWorkers)
	n := 0
	for i, c := range r.editor {
		v := vs[i]
		switch {
		case v == nil:
			continue
		case v.Actionable:
			r.editor[i] = discovery.Enrich(c, *v)
			n++
		default:
			r.editor[i] = discovery.MarkJudged(c, *v)
		}
		r.rc.Decisions.Candidate(r.editor[i], PhaseEnrich, discovery.VerdictInclude, ReasonEditorPick)
	}
	return n, nil
}

// judge applies the acceptance rule to everything not yet vetted
func (r *run) judge(ctx context.Context) (int, error) {
	if len(r.unvetted) == 0 {
		return 0, nil
	}
	var vs []*discovery.JudgeVerdict
	if r.judgeEnabled() {
		vs = r.deps().Judge.JudgeBatch(ctx, inputsOf(r.unvetted), r.svc.cfg.JudgeWorkers)
	} else {
		vs = make([]*discovery.JudgeVerdict, len(r.unvetted))
	}

	accepted := 0
	for i, c := range r.unvetted {
		d := verdict.Decide(vs[i], verdict.Keywords(c))
		out := verdict.Apply(c, vs[i], d)
		r.rc.Decisions.Decided(out, PhaseJudge, d.Verdict(), d.Reason, d.Failing)
		if d.Passes() {
			r.vetted = append(r.vetted, out)
			accepted++
		}
	}
	r.unvetted = nil
	return accepted, nil
}

// backfill tops up volume with a few extra searches when still short
func (r *run) backfill(ctx context.Context) (int, error) {
	f := r.deps().Fetcher
	if f == nil || !f.Enabled() {
		return 0, nil
	}
	if len(r.editor)+len(r.vetted) >= r.st.maxPicks || r.rc.Budget.Remaining() <= 0 {
		return 0, nil
	}
	qs := r.svc.cfg.BackfillQueries
	if len(qs) > r.svc.cfg.BackfillCount {
		qs = qs[:r.svc.cfg.BackfillCount]
	}
	if len(qs) == 0 {
		return 0, nil
	}
	res := f.Search(ctx, fdom.Request{
		Run:    r.rc,
		Target: r.st.maxPicks - len(r.editor) - len(r.vetted),
		Phase:  PhaseBackfill,
		Origin: discovery.OriginBackfill,
		Dedup:  r.sess,
	}, qs)
	r.vetted = append(r.vetted, res.Accepted...)
	r.observed = append(r.observed, res.Observed...)
	r.sightings = append(r.sightings, res.Sightings...)
	return len(res.Accepted), nil
}

func (r *run) assemble(ctx context.Context) (domain.Result, error) {
	log := logger.C(ctx)
	rc := r.rc
	start := time.Now()

	all := make([]discovery.Candidate, 0, len(r.editor)+len(r.vetted))
	all = append(all, r.editor...)
	all = append(all, r.vetted...)
	res := r.deps().Curator.Curate(ctx, all, r.st.minScore, r.st.maxPicks)

	editorKeys := make(map[string]bool, len(r.editor))
	for _, c := range r.editor {
		editorKeys[discovery.Key(c)] = true
	}
	picks, displaced := forceEditorPicks(res, editorKeys, r.st.maxPicks)

	picked := make(map[string]bool, len(picks))
	for _, d := range picks {
		picked[discovery.Key(d.Candidate)] = true
	}
	wasDisplaced := make(map[string]bool, len(displaced))
	for _, d := range displaced {
		wasDisplaced[discovery.Key(d.Candidate)] = true
	}
	for _, d := range res.Ranked {
		k := discovery.Key(d.Candidate)
		switch {
		case picked[k] && editorKeys[k]:
			rc.Decisions.Decided(d.Candidate, PhaseAssemble, discovery.VerdictInclude, ReasonEditorPick, nil)
		case picked[k]:
			rc.Decisions.Decided(d.Candidate, PhaseAssemble, discovery.VerdictInclude, ReasonPicked, nil)
		case wasDisplaced[k]:
			rc.Decisions.Decided(d.Candidate, PhaseAssemble, discovery.VerdictExclude, ReasonDisplaced, nil)
		default:
			rc.Decisions.Decided(d.Candidate, PhaseAssemble, discovery.VerdictExclude, d.SkipReason, nil)
		}
		rc.Decisions.Scored(k, d.Score.Total)
	}
	rc.Decisions.Phase(discovery.PhaseReport{
		Name:       PhaseAssemble,
		Candidates: len(picks),
		DurationMs: time.Since(start).Milliseconds(),
	})

	if len(picks) < r.st.minPicks {
		qerr := &domain.QualityFloorError{Picks: len(picks), Min: r.st.minPicks}
		qerr.Log = rc.Decisions.Finish(discovery.OutcomeFailed, rc.Budget, qerr)
		if !rc.DryRun {
			r.persistSeen(ctx)
		}
		r.persistLog(ctx, qerr.Log)
		log.Error().Err(qerr).Msg("compile: quality floor not met")
		return domain.Result{Log: qerr.Log}, qerr
	}

	onRadar, skipped := sideLists(res, picked, displaced)
	digest, err := discovery.Digest{
		ID:            rc.DigestID,
		Name:          r.st.name,
		Date:          r.svc.cfg.Now().UTC(),
		RunID:         rc.RunID,
		Discoveries:   picks,
		OnRadar:       onRadar,
		Skipped:       skipped,
		SecurityNotes: securityNotes(picks),
		IsQuietWeek:   len(picks) < curate.QuietWeekBelow,
	}.Seal()
	if err != nil {
		return domain.Result{}, perr.Wrap(err, perr.ErrorCodeJSON, "compile: seal digest")
	}

	var saveErr error
	if !rc.DryRun {
		saveErr = r.persistOutputs(ctx, digest, picked)
	}

	final := rc.Decisions.Finish(discovery.OutcomeSuccess, rc.Budget, saveErr)
	r.persistLog(ctx, final)
	if saveErr != nil {
		return domain.Result{Log: final}, saveErr
	}

	log.Info().
		Str("digest_id", digest.ID).
		Int("picks", len(digest.Discoveries)).
		Int("on_radar", len(digest.OnRadar)).
		Int("tokens", digest.TokenCount).
		Float64("spent", final.Budget.Spent).
		Bool("quiet_week", digest.IsQuietWeek).
		Msg("compile: digest assembled")
	return domain.Result{Digest: digest, Log: final}, nil
}

// persistOutputs writes the digest, registers everything this run observed
// and saves the seen set. A digest write failure is returned; the rest is
// logged since the digest already exists
func (r *run) persistOutputs(ctx context.Context, d discovery.Digest, picked map[string]bool) error {
	log := logger.C(ctx)
	a := r.deps().Artifacts
	if err := a.SaveDigest(ctx, d); err != nil {
		return perr.Wrap(err, perr.CodeOf(err), "compile: save digest")
	}

	for _, c := range r.observed {
		issue := ""
		if picked[discovery.Key(c)] {
			issue = d.ID
		}
		r.sess.Register(c, issue)
	}
	for _, c := range r.sightings {
		r.sess.Register(c, "")
	}
	if err := r.sess.Save(ctx); err != nil {
		log.Error().Err(err).Msg("compile: registry save failed")
	}
	r.persistSeen(ctx)
	return nil
}

// persistSeen saves the metered seen set. It runs on failed runs too since
// those items were already paid for
func (r *run) persistSeen(ctx context.Context) {
	if err := r.deps().Artifacts.SaveSeen(ctx, r.rc.Seen); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("compile: seen set save failed")
	}
}

// persistLog writes the decision log and archives it when configured
func (r *run) persistLog(ctx context.Context, l discovery.DecisionLog) {
	log := logger.C(ctx)
	if err := r.deps().Artifacts.SaveDecisionLog(ctx, l); err != nil {
		log.Error().Err(err).Msg("compile: decision log save failed")
	}
	if ar := r.deps().Archive; ar != nil {
		if err := ar.ArchiveDecisions(ctx, l); err != nil {
			log.Warn().Err(err).Msg("compile: decision archive failed")
		}
	}
}

// forceEditorPicks puts every editor pick into the final picks. When the
// list is full an editor pick displaces the lowest ranked non editor pick,
// never the other way round
func forceEditorPicks(res curate.Result, editor map[string]bool, maxPicks int) (picks, displaced []discovery.CuratedDiscovery) {
	picks = slices.Clone(res.Picks)
	in := make(map[string]bool, len(picks))
	for i := range picks {
		k := discovery.Key(picks[i].Candidate)
		in[k] = true
		picks[i].EditorPick = editor[k]
	}
	for _, d := range res.Ranked {
		k := discovery.Key(d.Candidate)
		if !editor[k] || in[k] {
			continue
		}
		d.EditorPick = true
		d.SkipReason = ""
		if len(picks) >= maxPicks {
			if j := lastNonEditor(picks); j >= 0 {
				displaced = append(displaced, picks[j])
				picks = slices.Delete(picks, j, j+1)
			}
		}
		picks = append(picks, d)
		in[k] = true
	}
	slices.SortStableFunc(picks, func(a, b discovery.CuratedDiscovery) int {
		switch {
		case a.Score.Total > b.Score.Total:
			return -1
		case a.Score.Total < b.Score.Total:
			return 1
		}
		return 0
	})
	return picks, displaced
}

func lastNonEditor(picks []discovery.CuratedDiscovery) int {
	for i := len(picks) - 1; i >= 0; i-- {
		if !picks[i].EditorPick {
			return i
		}
	}
	return -1
}

// sideLists builds the on radar and skipped summaries. Anything that ended
// up published is left out, and picks displaced by editor picks join the
// radar
func sideLists(res curate.Result, picked map[string]bool, displaced []discovery.CuratedDiscovery) (onRadar, skipped []discovery.Summary) {
	keep := func(ds []discovery.CuratedDiscovery) []discovery.CuratedDiscovery {
		return slices.DeleteFunc(slices.Clone(ds), func(d discovery.CuratedDiscovery) bool {
			return picked[discovery.Key(d.Candidate)]
		})
	}
	radar := keep(res.OnRadar)
	for _, d := range displaced {
		d.SkipReason = ReasonDisplaced
		radar = append(radar, d)
	}
	return summaries(radar), summaries(keep(res.Skipped))
}

func summaries(ds []discovery.CuratedDiscovery) []discovery.Summary {
	out := make([]discovery.Summary, 0, len(ds))
	for _, d := range ds {
		out = append(out, discovery.Summarize(d))
	}
	return out
}
