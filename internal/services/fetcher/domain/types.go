// Package domain holds the fetcher request, result and ports
package domain

import (
	"context"

	"trawler/internal/core/discovery"
	"trawler/internal/core/runctx"
)

// StopReason says why a fetch loop ended
type StopReason string

// Stop reasons
const (
	StopTarget    StopReason = "target"
	StopBatchCap  StopReason = "batch_cap"
	StopExhausted StopReason = "exhausted"
	StopBudget    StopReason = "budget"
	StopCanceled  StopReason = "canceled"
	StopDisabled  StopReason = "disabled"
)

// Enricher resolves the links inside a raw item into judge context
type Enricher interface {
	Enrich(ctx context.Context, it discovery.RawItem) discovery.RawItem
}

// Admitter is the dedup gate candidates pass before judging
type Admitter interface {
	Admit(c discovery.Candidate) (reason string, ok bool)
}

// Request is one fetch loop
type Request struct {
	Run    *runctx.RunContext
	Target int
	// Phase labels decision log entries
	Phase  string
	Origin discovery.Origin
	// Dedup is optional; nil admits everything
	Dedup Admitter
}

// Result of a fetch loop
type Result struct {
	Accepted []discovery.Candidate
	// Observed holds every admitted candidate, accepted or not
	Observed []discovery.Candidate
	// Sightings are candidates dedup turned away
	Sightings []discovery.Candidate
	Batches   int
	Fetched   int
	Stop      StopReason
}

// Source kinds for a batch
const (
	KindFeed   = "feed"
	KindSearch = "search"
)
