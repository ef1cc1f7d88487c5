// Package domain holds the compile run options, results, errors and ports
package domain

import (
	"context"
	"fmt"

	"trawler/internal/core/discovery"
	"trawler/internal/core/runctx"
	perr "trawler/internal/platform/errors"
)

// RunOptions are per run overrides; zero values take the configured defaults
type RunOptions struct {
	DryRun    bool    `json:"dryRun"`
	Name      string  `json:"name,omitempty" validate:"omitempty,max=120"`
	MaxPicks  int     `json:"maxPicks,omitempty" validate:"omitempty,min=1,max=20"`
	MinPicks  int     `json:"minPicks,omitempty" validate:"omitempty,min=1,max=20"`
	MinScore  float64 `json:"minScore,omitempty" validate:"omitempty,min=0,max=5"`
	BudgetCap float64 `json:"budgetCap,omitempty" validate:"omitempty,min=0,max=100"`
}

// Result of a successful run
type Result struct {
	Digest discovery.Digest      `json:"digest"`
	Log    discovery.DecisionLog `json:"decisionLog"`
}

// ErrRunInProgress is returned when a run is requested while one is active
var ErrRunInProgress = perr.Conflictf("compile: a run is already in progress")

// QualityFloorError is the one fatal run outcome: curation produced fewer
// picks than the configured floor. It carries the decision log
type QualityFloorError struct {
	Picks int
	Min   int
	Log   discovery.DecisionLog
}

func (e *QualityFloorError) Error() string {
	return fmt.Sprintf("insufficient quality content, %d/%d picks found", e.Picks, e.Min)
}

// Unwrap exposes the project error code to perr.CodeOf
func (e *QualityFloorError) Unwrap() error {
	return perr.New(perr.ErrorCodeQualityFloor, e.Error())
}

// Artifacts persists run outputs
type Artifacts interface {
	SaveDigest(ctx context.Context, d discovery.Digest) error
	// SaveDecisionLog writes once per run; failed runs are stored under a
	// distinct name
	SaveDecisionLog(ctx context.Context, log discovery.DecisionLog) error
	LoadSeen(ctx context.Context) (*runctx.SeenSet, error)
	SaveSeen(ctx context.Context, s *runctx.SeenSet) error
}

// Reader serves stored digests and decision logs
type Reader interface {
	LatestDigest(ctx context.Context) (discovery.Digest, error)
	Digest(ctx context.Context, id string) (discovery.Digest, error)
	DecisionLog(ctx context.Context, runID string) (discovery.DecisionLog, error)
}

// Archive ships decision logs to an analytics store; best effort
type Archive interface {
	ArchiveDecisions(ctx context.Context, log discovery.DecisionLog) error
}
