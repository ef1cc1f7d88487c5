// Package xapi is the metered social source: a subscribed list timeline and
// recent search on the X API v2, billed per returned post
package xapi

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

const (
	defaultBaseURL = "https://api.x.com"
	defaultCost    = 0.01
	minResults     = 10
	maxResults     = 100
)

// Options configures the client
type Options struct {
	BaseURL     string
	BearerToken string
	ListID      string // feed source; empty means the feed is always exhausted
	SearchTail  string // appended to every search query
	CostPerItem float64
	Timeout     time.Duration
}

// Client implements sources.Metered
type Client struct {
	http *http.Client
	opts Options
}

// New builds the client
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.CostPerItem <= 0 {
		o.CostPerItem = defaultCost
	}
	if o.SearchTail == "" {
		o.SearchTail = "-is:retweet has:links lang:en"
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return &Client{http: &http.Client{Timeout: o.Timeout}, opts: o}
}

// Enabled reports whether a token is configured
func (c *Client) Enabled() bool { return c.opts.BearerToken != "" }

// CostPerItem implements sources.Metered
func (c *Client) CostPerItem() float64 { return c.opts.CostPerItem }

// Feed reads one page of the subscribed list timeline
func (c *Client) Feed(ctx context.Context, pageToken string, limit int) (discovery.Page, error) {
	if c.opts.ListID == "" {
		return discovery.Page{}, nil
	}
	q := c.fields(limit)
	if pageToken != "" {
		q.Set("pagination_token", pageToken)
	}
	return c.get(ctx, "/2/lists/"+url.PathEscape(c.opts.ListID)+"/tweets", q)
}

// Search runs a recent search; the result never carries a next token since
// every query is consumed in one batch
func (c *Client) Search(ctx context.Context, query string, limit int) (discovery.Page, error) {
	q := c.fields(limit)
	q.Set("query", strings.TrimSpace(query+" "+c.opts.SearchTail))
	p, err := c.get(ctx, "/2/tweets/search/recent", q)
	p.Next = ""
	return p, err
}

func (c *Client) fields(limit int) url.Values {
	limit = max(minResults, min(maxResults, limit))
	q := url.Values{}
	q.Set("max_results", fmt.Sprint(limit))
	q.Set("tweet.fields", "created_at,public_metrics,entities,author_id")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username")
	return q
}

type tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   struct {
		Likes    int `json:"like_count"`
		Reposts  int `json:"retweet_count"`
		Replies  int `json:"reply_count"`
		Quotes   int `json:"quote_count"`
		Bookmark int `json:"bookmark_count"`
	} `json:"public_metrics"`
	Entities struct {
		URLs []struct {
			Expanded string `json:"expanded_url"`
			Unwound  string `json:"unwound_url"`
		} `json:"urls"`
	} `json:"entities"`
}

type envelope struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (discovery.Page, error) {
	if !c.Enabled() {
		return discovery.Page{}, perr.Unavailablef("xapi: no bearer token configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return discovery.Page{}, perr.Wrap(err, perr.ErrorCodeUnknown, "xapi: new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.BearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return discovery.Page{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "xapi: request failed")
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return discovery.Page{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "xapi: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return discovery.Page{}, perr.FromStatus(resp.StatusCode, "xapi: %s status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return discovery.Page{}, perr.Wrap(err, perr.ErrorCodeJSON, "xapi: decode")
	}
	users := make(map[string]string, len(env.Includes.Users))
	for _, u := range env.Includes.Users {
		users[u.ID] = u.Username
	}

	page := discovery.Page{Next: env.Meta.NextToken, Items: make([]discovery.RawItem, 0, len(env.Data))}
	for _, t := range env.Data {
		handle := users[t.AuthorID]
		it := discovery.RawItem{
			ID:         t.ID,
			Text:       t.Text,
			URL:        fmt.Sprintf("https://x.com/%s/status/%s", nonEmpty(handle, "i"), t.ID),
			Author:     handle,
			Engagement: t.Metrics.Likes + t.Metrics.Reposts*2 + t.Metrics.Quotes*2 + t.Metrics.Bookmark,
			Comments:   t.Metrics.Replies,
			PostedAt:   t.CreatedAt,
		}
		for _, u := range t.Entities.URLs {
			link := nonEmpty(u.Unwound, u.Expanded)
			if link != "" && !isSelfLink(link) {
				it.Links = append(it.Links, link)
			}
		}
		page.Items = append(page.Items, it)
	}
	return page, nil
}

// isSelfLink drops links back into the platform such as quoted posts
func isSelfLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	h := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return h == "x.com" || h == "twitter.com" || h == "t.co"
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
