// Package discovery holds the value types that flow through a compilation
// run: candidates, scores, judge verdicts, the digest and its decision log
package discovery

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"trawler/internal/core/normalize"
)

// Category is the closed set of discovery kinds
type Category string

// Categories
const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryPrivacy        Category = "privacy"
	CategoryIntegration    Category = "integration"
	CategoryWorkflow       Category = "workflow"
	CategorySkill          Category = "skill"
	CategoryTool           Category = "tool"
	CategorySecurity       Category = "security"
	CategoryModel          Category = "model"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryInfrastructure, CategoryPrivacy, CategoryIntegration, CategoryWorkflow,
	CategorySkill, CategoryTool, CategorySecurity, CategoryModel,
}

// ParseCategory accepts any casing of a known category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Origin names the pipeline source that produced a candidate
type Origin string

// Origins
const (
	OriginEditor     Origin = "editor"
	OriginMetered    Origin = "metered"
	OriginRSS        Origin = "rss"
	OriginHackerNews Origin = "hackernews"
	OriginGHSearch   Origin = "ghsearch"
	OriginBackfill   Origin = "backfill"
)

// Install describes how a reader gets the thing running
type Install struct {
	Steps         []string `json:"steps"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	TimeEstimate  string   `json:"timeEstimate,omitempty"`
}

// Source is where a candidate was found
type Source struct {
	URL         string    `json:"url"`
	Type        string    `json:"type"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
}

// Signals are the social proof counters a source reported
type Signals struct {
	Engagement int  `json:"engagement"`
	Comments   int  `json:"comments"`
	Trending   bool `json:"trending,omitempty"`
}

// Candidate is one discovery under consideration
// Candidates are values: enrichment returns a modified copy, never mutates
type Candidate struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	OneLiner string   `json:"oneLiner"`
	What     string   `json:"what,omitempty"`
	Why      string   `json:"why,omitempty"`
	Impact   string   `json:"impact,omitempty"`
	Install  Install  `json:"install"`
	Source   Source   `json:"source"`
	Signals  Signals  `json:"signals"`

	Origin     Origin        `json:"origin"`
	Provenance []string      `json:"provenance,omitempty"`
	Verdict    *JudgeVerdict `json:"verdict,omitempty"`
}

// Clone returns a deep copy so callers can modify slices freely
func (c Candidate) Clone() Candidate {
	out := c
	out.Install.Steps = slices.Clone(c.Install.Steps)
	out.Install.Prerequisites = slices.Clone(c.Install.Prerequisites)
	out.Provenance = slices.Clone(c.Provenance)
	if c.Verdict != nil {
		v := c.Verdict.Clone()
		out.Verdict = &v
	}
	return out
}

// WithProvenance returns a copy with note appended to the provenance trail
func (c Candidate) WithProvenance(note string) Candidate {
	out := c.Clone()
	out.Provenance = append(out.Provenance, note)
	return out
}

// Description joins the free-text fields used for keyword scoring
func (c Candidate) Description() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{c.OneLiner, c.What, c.Why, c.Impact} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Judged reports whether a judge verdict is already attached
func (c Candidate) Judged() bool { return c.Verdict != nil }

// Key is the dedup identity: the canonical source URL when there is one,
// otherwise the normalized title
func Key(c Candidate) string {
	if k := normalize.URL(c.Source.URL); k != "" {
		return k
	}
	return normalize.TitleKey(c.Title)
}
