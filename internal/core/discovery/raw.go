package discovery

import (
	"strings"
	"time"
)

// RawItem is an unprocessed post from a metered source
type RawItem struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
	Author     string    `json:"author,omitempty"`
	Links      []string  `json:"links,omitempty"`
	Engagement int       `json:"engagement"`
	Comments   int       `json:"comments"`
	PostedAt   time.Time `json:"postedAt,omitzero"`

	// Context is filled by link enrichment before judging
	Context string `json:"context,omitempty"`
}

// Page is one batch from a metered source; Next is empty when exhausted
type Page struct {
	Items []RawItem
	Next  string
}

// FromRaw lifts a raw item into a candidate. The first link becomes the
// source url when present since it usually names the actual project
func FromRaw(it RawItem, origin Origin) Candidate {
	url := it.URL
	if len(it.Links) > 0 {
		url = it.Links[0]
	}
	text := strings.TrimSpace(it.Text)
	title, rest, _ := strings.Cut(text, "\n")
	if len([]rune(title)) > 100 {
		title = string([]rune(title)[:100])
	}
	return Candidate{
		ID:       string(origin) + ":" + it.ID,
		Category: GuessCategory(text),
		Title:    strings.TrimSpace(title),
		OneLiner: strings.TrimSpace(title),
		What:     strings.TrimSpace(rest),
		Source:   Source{URL: url, Type: string(origin), Author: it.Author, PublishedAt: it.PostedAt},
		Signals:  Signals{Engagement: it.Engagement, Comments: it.Comments},
		Origin:   origin,
	}
}
