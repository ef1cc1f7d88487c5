// Package domain holds the registry types and ports
package domain

import (
	"slices"
	"time"
)

// Entry is the durable record of one discovery key across runs
type Entry struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
	TimesPicked int       `json:"timesPicked"`
	IssueIDs    []string  `json:"issueIds"`
}

// Published reports whether the entry has ever made it into a digest
func (e Entry) Published() bool { return e.TimesPicked > 0 }

// Clone returns a copy with its own IssueIDs slice
func (e Entry) Clone() Entry {
	out := e
	out.IssueIDs = slices.Clone(e.IssueIDs)
	if out.IssueIDs == nil {
		out.IssueIDs = []string{}
	}
	return out
}
