// Package runctx carries the mutable state scoped to one compilation run:
// the spend budget, the rolling seen set and the decision recorder
package runctx

import (
	"time"
)

// RunContext is created fresh per run and passed through every phase
type RunContext struct {
	RunID     string
	DigestID  string
	DryRun    bool
	Budget    *Budget
	Seen      *SeenSet
	Decisions *Recorder
	Now       func() time.Time
}

// New builds a run context with a reset budget
// seen may be a set loaded from a previous run; nil starts empty
func New(runID, digestID string, budgetCap float64, seen *SeenSet, now func() time.Time) *RunContext {
	if now == nil {
		now = time.Now
	}
	if seen == nil {
		seen = NewSeenSet(DefaultSeenWindow, now)
	}
	b := NewBudget(budgetCap)
	b.Reset()
	return &RunContext{
		RunID:     runID,
		DigestID:  digestID,
		Budget:    b,
		Seen:      seen,
		Decisions: NewRecorder(runID, digestID, now),
		Now:       now,
	}
}
