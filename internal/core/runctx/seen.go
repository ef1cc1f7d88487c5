package runctx

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultSeenWindow is how long a fetched item id stays remembered
const DefaultSeenWindow = 7 * 24 * time.Hour

// SeenSet is the rolling set of raw item ids already paid for
// Entries older than the window are forgotten on Prune and on load
type SeenSet struct {
	mu     sync.Mutex
	items  map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewSeenSet builds an empty set; window <= 0 uses DefaultSeenWindow
func NewSeenSet(window time.Duration, now func() time.Time) *SeenSet {
	if window <= 0 {
		window = DefaultSeenWindow
	}
	if now == nil {
		now = time.Now
	}
	return &SeenSet{items: map[string]time.Time{}, window: window, now: now}
}

// Has reports whether id was seen inside the window
func (s *SeenSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.items[id]
	return ok && s.now().Sub(at) < s.window
}

// Mark records ids as seen now
func (s *SeenSet) Mark(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	for _, id := range ids {
		if id != "" {
			s.items[id] = t
		}
	}
}

// Unseen returns the ids not yet in the set, keeping order and dropping
// repeats within ids
func (s *SeenSet) Unseen(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]string, 0, len(ids))
	batch := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if at, ok := s.items[id]; ok && now.Sub(at) < s.window {
			continue
		}
		if _, dup := batch[id]; dup {
			continue
		}
		batch[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Prune drops entries that fell out of the window and returns how many
func (s *SeenSet) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, at := range s.items {
		if now.Sub(at) >= s.window {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Len returns the number of remembered ids
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// MarshalJSON writes the set as an id to timestamp object
func (s *SeenSet) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.items)
}

// UnmarshalJSON merges a persisted set, skipping expired entries
func (s *SeenSet) UnmarshalJSON(b []byte) error {
	var in map[string]time.Time
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = map[string]time.Time{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.window <= 0 {
		s.window = DefaultSeenWindow
	}
	now := s.now()
	for id, at := range in {
		if now.Sub(at) < s.window {
			s.items[id] = at
		}
	}
	return nil
}
