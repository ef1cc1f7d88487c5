// Package rss pulls candidates from RSS and Atom feeds
package rss

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"trawler/internal/core/discovery"
	"trawler/internal/core/langhint"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
)

// Options configures the feed source
type Options struct {
	Feeds    []string
	Keywords []string      // empty keeps every item
	MaxAge   time.Duration // items older than this are ignored, default 7 days
	Limit    int           // per feed cap, default 20
	Scripts  []string      // writing scripts kept, see langhint; empty keeps all
	Timeout  time.Duration
}

// Source reads a fixed list of feeds
type Source struct {
	client *http.Client
	opts   Options
	now    func() time.Time
	log    logger.Logger
}

// New builds the source
func New(o Options) *Source {
	if o.MaxAge <= 0 {
		o.MaxAge = 7 * 24 * time.Hour
	}
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	for i, k := range o.Keywords {
		o.Keywords[i] = strings.ToLower(strings.TrimSpace(k))
	}
	return &Source{
		client: &http.Client{Timeout: o.Timeout},
		opts:   o,
		now:    time.Now,
		log:    *logger.Named("rss"),
	}
}

// Name implements sources.Source
func (s *Source) Name() string { return "rss" }

// Fetch reads every feed; a broken feed is logged and skipped. Only when
// every feed fails is an error returned
func (s *Source) Fetch(ctx context.Context) ([]discovery.Candidate, error) {
	parser := gofeed.NewParser()
	parser.Client = s.client

	var out []discovery.Candidate
	failed := 0
	for _, url := range s.opts.Feeds {
		feed, err := parser.ParseURLWithContext(url, ctx)
		if err != nil {
			failed++
			s.log.Warn().Err(err).Str("feed", url).Msg("rss feed failed")
			continue
		}
		out = append(out, s.items(feed)...)
	}
	if failed > 0 && failed == len(s.opts.Feeds) {
		return nil, perr.Unavailablef("rss: all %d feeds failed", failed)
	}
	return out, nil
}

func (s *Source) items(feed *gofeed.Feed) []discovery.Candidate {
	cutoff := s.now().Add(-s.opts.MaxAge)
	out := make([]discovery.Candidate, 0, s.opts.Limit)
	for _, it := range feed.Items {
		if len(out) >= s.opts.Limit {
			break
		}
		var pub time.Time
		switch {
		case it.PublishedParsed != nil:
			pub = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			pub = *it.UpdatedParsed
		}
		if !pub.IsZero() && pub.Before(cutoff) {
			continue
		}
		title := strings.TrimSpace(it.Title)
		desc := strings.TrimSpace(it.Description)
		if !s.matches(title+" "+desc) || !langhint.Allowed(title+" "+desc, s.opts.Scripts) {
			continue
		}
		author := ""
		if it.Author != nil {
			author = it.Author.Name
		}
		id := it.GUID
		if id == "" {
			id = it.Link
		}
		out = append(out, discovery.Candidate{
			ID:       "rss:" + id,
			Category: discovery.GuessCategory(title + " " + desc),
			Title:    title,
			OneLiner: title,
			What:     desc,
			Source:   discovery.Source{URL: strings.TrimSpace(it.Link), Type: "rss", Author: author, PublishedAt: pub},
			Origin:   discovery.OriginRSS,
		})
	}
	return out
}

func (s *Source) matches(text string) bool {
	if len(s.opts.Keywords) == 0 {
		return true
	}
	t := strings.ToLower(text)
	for _, k := range s.opts.Keywords {
		if len(k) >= 3 && strings.Contains(t, k) {
			return true
		}
	}
	return false
}
