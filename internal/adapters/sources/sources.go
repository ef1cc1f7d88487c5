// Package sources holds the candidate source adapters. Free sources and the
// editor file implement Source; the metered social source implements
// Metered and is driven by the budget capped fetcher
package sources

import (
	"context"

	"trawler/internal/core/discovery"
)

// Source yields candidates for one run
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]discovery.Candidate, error)
}

// Metered is a paid source with a subscribed feed and keyword search
type Metered interface {
	Feed(ctx context.Context, pageToken string, limit int) (discovery.Page, error)
	Search(ctx context.Context, query string, limit int) (discovery.Page, error)
	CostPerItem() float64
}
