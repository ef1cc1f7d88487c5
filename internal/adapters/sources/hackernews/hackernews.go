// Package hackernews pulls Show HN posts from the Algolia search API
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
)

const defaultBaseURL = "https://hn.algolia.com/api/v1"

// Options configures the source
type Options struct {
	BaseURL   string
	Tags      string        // algolia tags filter, default show_hn
	MinPoints int           // default 20
	Window    time.Duration // default 7 days
	Limit     int           // hits per page, default 50
	Timeout   time.Duration
}

// Source queries Algolia once per run
type Source struct {
	client *http.Client
	opts   Options
	now    func() time.Time
}

// New builds the source
func New(o Options) *Source {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Tags == "" {
		o.Tags = "show_hn"
	}
	if o.MinPoints <= 0 {
		o.MinPoints = 20
	}
	if o.Window <= 0 {
		o.Window = 7 * 24 * time.Hour
	}
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return &Source{client: &http.Client{Timeout: o.Timeout}, opts: o, now: time.Now}
}

// Name implements sources.Source
func (s *Source) Name() string { return "hackernews" }

type hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
	StoryText   string `json:"story_text"`
}

// Fetch runs one search_by_date query over the window
func (s *Source) Fetch(ctx context.Context) ([]discovery.Candidate, error) {
	since := s.now().Add(-s.opts.Window).Unix()
	q := url.Values{}
	q.Set("tags", s.opts.Tags)
	q.Set("numericFilters", fmt.Sprintf("created_at_i>%d,points>=%d", since, s.opts.MinPoints))
	q.Set("hitsPerPage", fmt.Sprint(s.opts.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/search_by_date?"+q.Encode(), nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "hackernews: new request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "hackernews: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, perr.FromStatus(resp.StatusCode, "hackernews: status %d", resp.StatusCode)
	}

	var body struct {
		Hits []hit `json:"hits"`
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "hackernews: read body")
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "hackernews: decode")
	}

	out := make([]discovery.Candidate, 0, len(body.Hits))
	for _, h := range body.Hits {
		title := strings.TrimSpace(strings.TrimPrefix(h.Title, "Show HN:"))
		link := h.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		out = append(out, discovery.Candidate{
			ID:       "hn:" + h.ObjectID,
			Category: discovery.GuessCategory(title + " " + h.StoryText),
			Title:    title,
			OneLiner: title,
			What:     strings.TrimSpace(h.StoryText),
			Source: discovery.Source{
				URL: link, Type: "hackernews", Author: h.Author,
				PublishedAt: time.Unix(h.CreatedAtI, 0).UTC(),
			},
			Signals: discovery.Signals{Engagement: h.Points, Comments: h.NumComments},
			Origin:  discovery.OriginHackerNews,
		})
	}
	return out, nil
}
