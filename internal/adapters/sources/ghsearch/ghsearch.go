// Package ghsearch turns GitHub repository search into a free candidate source
package ghsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trawler/internal/adapters/github"
	"trawler/internal/core/discovery"
	"trawler/internal/platform/logger"
)

// Searcher is the slice of the GitHub client this source needs
type Searcher interface {
	SearchRepos(ctx context.Context, query string, perPage int) ([]github.Repo, error)
}

// Options configures the source
type Options struct {
	Queries  []string      // e.g. "topic:mcp", a created:> filter is appended
	Window   time.Duration // default 7 days
	PerQuery int           // default 10
	MinStars int           // default 25
}

// Source runs each query once and merges results by repository
type Source struct {
	gh   Searcher
	opts Options
	now  func() time.Time
	log  logger.Logger
}

// New builds the source
func New(gh Searcher, o Options) *Source {
	if o.Window <= 0 {
		o.Window = 7 * 24 * time.Hour
	}
	if o.PerQuery <= 0 {
		o.PerQuery = 10
	}
	if o.MinStars <= 0 {
		o.MinStars = 25
	}
	return &Source{gh: gh, opts: o, now: time.Now, log: *logger.Named("ghsearch")}
}

// Name implements sources.Source
func (s *Source) Name() string { return "ghsearch" }

// Fetch runs every query; failures of single queries are logged
func (s *Source) Fetch(ctx context.Context) ([]discovery.Candidate, error) {
	since := s.now().Add(-s.opts.Window).Format("2006-01-02")
	seen := map[string]bool{}
	var out []discovery.Candidate
	var lastErr error
	ok := 0
	for _, q := range s.opts.Queries {
		query := fmt.Sprintf("%s created:>%s stars:>=%d", q, since, s.opts.MinStars)
		repos, err := s.gh.SearchRepos(ctx, query, s.opts.PerQuery)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Str("query", q).Msg("github search failed")
			continue
		}
		ok++
		for _, r := range repos {
			if r.Archived || r.Fork || seen[r.FullName] {
				continue
			}
			seen[r.FullName] = true
			out = append(out, candidate(r))
		}
	}
	if ok == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func candidate(r github.Repo) discovery.Candidate {
	desc := strings.TrimSpace(r.Description)
	text := desc + " " + strings.Join(r.Topics, " ")
	return discovery.Candidate{
		ID:       fmt.Sprintf("gh:%d", r.ID),
		Category: discovery.GuessCategory(text),
		Title:    r.Name,
		OneLiner: desc,
		What:     strings.Join(r.Topics, ", "),
		Install:  discovery.Install{Steps: []string{"git clone " + r.HTMLURL}},
		Source: discovery.Source{
			URL: r.HTMLURL, Type: "github", Author: r.Owner.Login, PublishedAt: r.CreatedAt,
		},
		Signals: discovery.Signals{Engagement: r.Stargazers},
		Origin:  discovery.OriginGHSearch,
	}
}
