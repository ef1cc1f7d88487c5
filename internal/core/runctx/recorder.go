package runctx

import (
	"slices"
	"sync"
	"time"

	"trawler/internal/core/discovery"
)

// Recorder accumulates the decision log for one run
// A later decision for a key replaces the earlier one in place so the log
// keeps first-observed order
type Recorder struct {
	mu   sync.Mutex
	log  discovery.DecisionLog
	idx  map[string]int
	now  func() time.Time
	hook func(discovery.DecisionEntry)
}

// NewRecorder starts a log for runID
func NewRecorder(runID, digestID string, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		log: discovery.DecisionLog{
			RunID:     runID,
			DigestID:  digestID,
			StartedAt: now().UTC(),
			Entries:   []discovery.DecisionEntry{},
			Phases:    []discovery.PhaseReport{},
		},
		idx: map[string]int{},
		now: now,
	}
}

// OnRecord installs a callback run after each Record, used to project
// decisions into the structured log
func (r *Recorder) OnRecord(fn func(discovery.DecisionEntry)) {
	r.mu.Lock()
	r.hook = fn
	r.mu.Unlock()
}

// Record upserts e by key; an empty key falls back to the title
func (r *Recorder) Record(e discovery.DecisionEntry) {
	if e.Key == "" {
		e.Key = e.Title
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = r.now().UTC()
	}
	e.Failing = slices.Clone(e.Failing)
	if e.Judge != nil {
		v := e.Judge.Clone()
		e.Judge = &v
	}

	r.mu.Lock()
	if i, ok := r.idx[e.Key]; ok {
		prev := r.log.Entries[i]
		if e.Judge == nil {
			e.Judge = prev.Judge
		}
		if e.Score == nil {
			e.Score = prev.Score
		}
		if e.Origin == "" {
			e.Origin = prev.Origin
		}
		r.log.Entries[i] = e
	} else {
		r.idx[e.Key] = len(r.log.Entries)
		r.log.Entries = append(r.log.Entries, e)
	}
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(e)
	}
}

// Candidate records a decision about c, filling key, title, url and origin
func (r *Recorder) Candidate(c discovery.Candidate, phase string, v discovery.Verdict, reason string) {
	r.Record(discovery.DecisionEntry{
		Key:     discovery.Key(c),
		Title:   c.Title,
		URL:     c.Source.URL,
		Origin:  c.Origin,
		Phase:   phase,
		Verdict: v,
		Reason:  reason,
		Judge:   c.Verdict,
	})
}

// Decided records the acceptance rule outcome for c, including the
// criteria that failed
func (r *Recorder) Decided(c discovery.Candidate, phase string, v discovery.Verdict, reason string, failing []string) {
	r.Record(discovery.DecisionEntry{
		Key:     discovery.Key(c),
		Title:   c.Title,
		URL:     c.Source.URL,
		Origin:  c.Origin,
		Phase:   phase,
		Verdict: v,
		Reason:  reason,
		Failing: failing,
		Judge:   c.Verdict,
	})
}

// Scored attaches a rubric total to the entry for key, keeping its verdict
func (r *Recorder) Scored(key string, total float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.idx[key]; ok {
		t := total
		r.log.Entries[i].Score = &t
	}
}

// Lookup returns the current entry for key
func (r *Recorder) Lookup(key string) (discovery.DecisionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.idx[key]
	if !ok {
		return discovery.DecisionEntry{}, false
	}
	return r.log.Entries[i], true
}

// Phase appends a phase report
func (r *Recorder) Phase(p discovery.PhaseReport) {
	r.mu.Lock()
	r.log.Phases = append(r.log.Phases, p)
	r.mu.Unlock()
}

// Len returns the number of distinct keys recorded
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.log.Entries)
}

// Finish stamps the outcome and returns the final log
func (r *Recorder) Finish(outcome string, b BudgetView, err error) discovery.DecisionLog {
	r.mu.Lock()
	r.log.Outcome = outcome
	r.log.FinishedAt = r.now().UTC()
	if b != nil {
		r.log.Budget = discovery.BudgetReport{Spent: b.Spent(), Cap: b.Cap()}
	}
	if err != nil {
		r.log.Error = err.Error()
	}
	r.mu.Unlock()
	return r.Snapshot()
}

// Snapshot returns a copy safe to serialize while recording continues
func (r *Recorder) Snapshot() discovery.DecisionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.log
	out.Entries = slices.Clone(r.log.Entries)
	out.Phases = slices.Clone(r.log.Phases)
	return out
}

// SetDryRun flags the log as produced by a dry run
func (r *Recorder) SetDryRun(v bool) {
	r.mu.Lock()
	r.log.DryRun = v
	r.mu.Unlock()
}

// BudgetView is the read side of a Budget
type BudgetView interface {
	Spent() float64
	Cap() float64
}
