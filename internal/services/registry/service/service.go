// Package service implements the dedup registry: a session loaded once per
// run that answers duplicate checks and records what the run observed
package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"trawler/internal/core/discovery"
	"trawler/internal/core/normalize"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
	"trawler/internal/services/registry/domain"
)

// DefaultHistoryDepth is how many recent digests count for dedup
const DefaultHistoryDepth = 10

// Duplicate reasons recorded in the decision log
const (
	ReasonPublished = "already published"
	ReasonRecent    = "published in a recent digest"
	ReasonInRun     = "duplicate within this run"
)

// Config for the registry service
type Config struct {
	HistoryDepth int
	Now          func() time.Time
}

// Service opens registry sessions over a store
type Service struct {
	store domain.Store
	hist  domain.History
	cfg   Config
}

// New constructs the registry service; hist may be nil
func New(store domain.Store, hist domain.History, cfg Config) *Service {
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = DefaultHistoryDepth
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{store: store, hist: hist, cfg: cfg}
}

// List returns every stored entry ordered by key
func (s *Service) List(ctx context.Context) ([]domain.Entry, error) {
	xs, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Key < xs[j].Key })
	return xs, nil
}

// Open loads the registry and recent history into a fresh session
// A history failure degrades to registry only dedup
func (s *Service) Open(ctx context.Context) (*Session, error) {
	xs, err := s.store.Load(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "open registry")
	}

	sess := &Session{
		store:   s.store,
		now:     s.cfg.Now,
		entries: make(map[string]*domain.Entry, len(xs)),
		titles:  map[string]string{},
		recent:  map[string]struct{}{},
		inRun:   map[string]struct{}{},
	}
	for _, e := range xs {
		sess.put(e.Clone())
	}

	if s.hist != nil {
		keys, err := s.hist.RecentKeys(ctx, s.cfg.HistoryDepth)
		if err != nil {
			logger.C(ctx).Warn().Err(err).Msg("registry: history unavailable, using registry only")
		}
		for _, k := range keys {
			sess.recent[k] = struct{}{}
		}
	}
	return sess, nil
}

// Session is the per run view of the registry
// Safe for concurrent use
type Session struct {
	mu      sync.Mutex
	store   domain.Store
	now     func() time.Time
	entries map[string]*domain.Entry
	// titles maps a normalized title to the key of a published entry
	titles map[string]string
	recent map[string]struct{}
	inRun  map[string]struct{}
}

func (s *Session) put(e domain.Entry) {
	s.entries[e.Key] = &e
	if e.Published() {
		if tk := normalize.TitleKey(e.Title); tk != "" {
			s.titles[tk] = e.Key
		}
	}
}

// Key is the dedup identity of c
func (s *Session) Key(c discovery.Candidate) string { return discovery.Key(c) }

// Check reports whether c is a duplicate and why
func (s *Session) Check(c discovery.Candidate) (reason string, dup bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(c)
}

func (s *Session) check(c discovery.Candidate) (string, bool) {
	k := discovery.Key(c)
	if _, ok := s.inRun[k]; ok {
		return ReasonInRun, true
	}
	if e, ok := s.entries[k]; ok && e.Published() {
		return ReasonPublished, true
	}
	if tk := normalize.TitleKey(c.Title); tk != "" {
		if _, ok := s.titles[tk]; ok {
			return ReasonPublished, true
		}
	}
	if _, ok := s.recent[k]; ok {
		return ReasonRecent, true
	}
	return "", false
}

// IsDuplicate reports whether c was published before or already seen in
// this run
func (s *Session) IsDuplicate(c discovery.Candidate) bool {
	_, dup := s.Check(c)
	return dup
}

// Admit checks c and, when it is new, claims its key for this run
func (s *Session) Admit(c discovery.Candidate) (reason string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reason, dup := s.check(c); dup {
		return reason, false
	}
	s.inRun[discovery.Key(c)] = struct{}{}
	return "", true
}

// Register upserts c. A non-empty issueID that the entry has not seen
// before counts as one more pick, so replays are idempotent
func (s *Session) Register(c discovery.Candidate, issueID string) domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	k := discovery.Key(c)
	e, ok := s.entries[k]
	if !ok {
		e = &domain.Entry{
			Key:       k,
			Title:     c.Title,
			URL:       c.Source.URL,
			FirstSeen: now,
			IssueIDs:  []string{},
		}
		s.entries[k] = e
	}
	e.LastSeen = now
	if issueID != "" && !slices.Contains(e.IssueIDs, issueID) {
		e.IssueIDs = append(e.IssueIDs, issueID)
		e.TimesPicked++
	}
	if e.Published() {
		if tk := normalize.TitleKey(e.Title); tk != "" {
			s.titles[tk] = k
		}
	}
	return e.Clone()
}

// Get returns the entry for key
func (s *Session) Get(key string) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, false
	}
	return e.Clone(), true
}

// Entries returns a snapshot ordered by key
func (s *Session) Entries() []domain.Entry {
	s.mu.Lock()
	out := make([]domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Save writes the session back through the store
func (s *Session) Save(ctx context.Context) error {
	return s.store.Save(ctx, s.Entries())
}
