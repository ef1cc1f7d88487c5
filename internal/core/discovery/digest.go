package discovery

import (
	"encoding/json"
	"time"
)

// Summary is the short form used for radar and skipped lists
type Summary struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	URL    string  `json:"url,omitempty"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// Summarize reduces a curated discovery to its Summary
func Summarize(d CuratedDiscovery) Summary {
	return Summary{Key: Key(d.Candidate), Title: d.Title, URL: d.Source.URL, Score: d.Score.Total, Reason: d.SkipReason}
}

// Digest is one published issue
type Digest struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Date          time.Time          `json:"date"`
	RunID         string             `json:"runId"`
	Discoveries   []CuratedDiscovery `json:"discoveries"`
	OnRadar       []Summary          `json:"onRadar"`
	Skipped       []Summary          `json:"skipped"`
	SecurityNotes []string           `json:"securityNotes"`
	TokenCount    int                `json:"tokenCount"`
	IsQuietWeek   bool               `json:"isQuietWeek"`
}

// Keys returns the dedup keys of every published discovery
func (d Digest) Keys() []string {
	out := make([]string, 0, len(d.Discoveries))
	for _, c := range d.Discoveries {
		out = append(out, Key(c.Candidate))
	}
	return out
}

// Seal computes TokenCount from the serialized payload size, roughly four
// bytes per token. The count field itself is part of the payload, so the
// estimate is taken on the digest with TokenCount zeroed
func (d Digest) Seal() (Digest, error) {
	d.TokenCount = 0
	b, err := json.Marshal(d)
	if err != nil {
		return d, err
	}
	d.TokenCount = (len(b) + 3) / 4
	return d, nil
}
