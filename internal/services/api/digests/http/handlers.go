// Package http provides the operator endpoints for digests and runs
package http

import (
	"context"
	stdhttp "net/http"

	"trawler/internal/core/discovery"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/compile/domain"
)

// Runner starts a compilation
type Runner interface {
	Run(ctx context.Context, opts domain.RunOptions) (domain.Result, error)
}

// Register mounts the routes
func Register(r phttp.Router, run Runner, read domain.Reader) {
	h := &handlers{run: run, read: read}
	phttp.PostJSON[domain.RunOptions](r, "/runs", h.trigger)
	phttp.GetJSON(r, "/runs/{id}/decisions", h.decisions)
	phttp.GetJSON(r, "/digests/latest", h.latest)
	phttp.GetJSON(r, "/digests/{id}", h.digest)
}

type handlers struct {
	run  Runner
	read domain.Reader
}

// RunResponse summarizes a finished run
type RunResponse struct {
	RunID       string                  `json:"runId"`
	DigestID    string                  `json:"digestId"`
	DryRun      bool                    `json:"dryRun"`
	Picks       int                     `json:"picks"`
	TokenCount  int                     `json:"tokenCount"`
	IsQuietWeek bool                    `json:"isQuietWeek"`
	Budget      discovery.BudgetReport  `json:"budget"`
	Phases      []discovery.PhaseReport `json:"phases"`
}

// trigger runs synchronously; a run already in flight answers 409 and a
// run below the quality floor answers 422
func (h *handlers) trigger(r *stdhttp.Request, in domain.RunOptions) (any, error) {
	res, err := h.run.Run(context.WithoutCancel(r.Context()), in)
	if err != nil {
		return nil, err
	}
	return RunResponse{
		RunID:       res.Log.RunID,
		DigestID:    res.Digest.ID,
		DryRun:      res.Log.DryRun,
		Picks:       len(res.Digest.Discoveries),
		TokenCount:  res.Digest.TokenCount,
		IsQuietWeek: res.Digest.IsQuietWeek,
		Budget:      res.Log.Budget,
		Phases:      res.Log.Phases,
	}, nil
}

func (h *handlers) decisions(r *stdhttp.Request) (any, error) {
	return h.read.DecisionLog(r.Context(), phttp.URLParam(r, "id"))
}

func (h *handlers) latest(r *stdhttp.Request) (any, error) {
	return h.read.LatestDigest(r.Context())
}

func (h *handlers) digest(r *stdhttp.Request) (any, error) {
	return h.read.Digest(r.Context(), phttp.URLParam(r, "id"))
}
