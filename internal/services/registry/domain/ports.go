package domain

import "context"

// Store persists the registry as a whole
// It is loaded once when a run starts and saved once when it succeeds
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// History exposes the keys published in the most recent k digests
type History interface {
	RecentKeys(ctx context.Context, k int) ([]string, error)
}
