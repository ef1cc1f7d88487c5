// Package linkresolve turns the links inside a short post into context text
// a judge can read: README text for repositories, page text otherwise, and a
// search snippet when nothing else resolves
package linkresolve

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trawler/internal/core/discovery"
	"trawler/internal/core/normalize"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/logger"
)

const (
	defaultMaxLinks   = 3
	defaultMaxChars   = 2000
	defaultSnippetURL = "https://html.duckduckgo.com/html/"
	maxPageBytes      = 1 << 20
)

// ReadmeSource returns raw README text for owner/repo
type ReadmeSource interface {
	Readme(ctx context.Context, owner, name string) (string, error)
}

// Options configures the resolver
type Options struct {
	MaxLinks   int
	MaxChars   int // per link
	SnippetURL string
	UserAgent  string
	Timeout    time.Duration
}

// Resolver implements link enrichment
type Resolver struct {
	readme ReadmeSource
	http   *http.Client
	opts   Options
	log    logger.Logger
}

// New builds a resolver; readme may be nil to skip the README path
func New(readme ReadmeSource, o Options) *Resolver {
	if o.MaxLinks <= 0 {
		o.MaxLinks = defaultMaxLinks
	}
	if o.MaxChars <= 0 {
		o.MaxChars = defaultMaxChars
	}
	if o.SnippetURL == "" {
		o.SnippetURL = defaultSnippetURL
	}
	if o.UserAgent == "" {
		o.UserAgent = "trawler"
	}
	if o.Timeout <= 0 {
		o.Timeout = 8 * time.Second
	}
	return &Resolver{readme: readme, http: &http.Client{Timeout: o.Timeout}, opts: o, log: *logger.Named("linkresolve")}
}

// Enrich returns a copy of it with Context filled. Repository links are tried
// first since README text beats marketing pages
func (r *Resolver) Enrich(ctx context.Context, it discovery.RawItem) discovery.RawItem {
	links := orderLinks(it.Links)
	if len(links) > r.opts.MaxLinks {
		links = links[:r.opts.MaxLinks]
	}

	var parts []string
	for _, l := range links {
		if txt := r.resolve(ctx, l); txt != "" {
			parts = append(parts, txt)
		}
	}
	if len(parts) == 0 {
		if s, err := r.Snippet(ctx, firstLine(it.Text)); err == nil && s != "" {
			parts = append(parts, s)
		} else if err != nil {
			r.log.Debug().Err(err).Str("item", it.ID).Msg("snippet fallback failed")
		}
	}
	it.Links = append([]string(nil), it.Links...)
	it.Context = strings.Join(parts, "\n\n")
	return it
}

// orderLinks puts repository links first, keeping relative order otherwise
func orderLinks(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if normalize.RepoSlug(l) != "" {
			out = append(out, l)
		}
	}
	for _, l := range in {
		if normalize.RepoSlug(l) == "" {
			out = append(out, l)
		}
	}
	return out
}

func (r *Resolver) resolve(ctx context.Context, link string) string {
	if slug := normalize.RepoSlug(link); slug != "" && r.readme != nil {
		owner, name, _ := strings.Cut(slug, "/")
		txt, err := r.readme.Readme(ctx, owner, name)
		if err == nil && strings.TrimSpace(txt) != "" {
			return r.clip("README "+slug+":\n"+txt)
		}
		if err != nil {
			r.log.Debug().Err(err).Str("repo", slug).Msg("readme fetch failed, trying page")
		}
	}
	txt, err := r.Page(ctx, link)
	if err != nil {
		r.log.Debug().Err(err).Str("link", link).Msg("page fetch failed")
		return ""
	}
	return txt
}

// Page fetches link and extracts title, description and paragraph text
func (r *Resolver) Page(ctx context.Context, link string) (string, error) {
	doc, err := r.fetch(ctx, link)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, header, noscript").Remove()

	var b strings.Builder
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	if d, ok := doc.Find(`meta[name="description"], meta[property="og:description"]`).First().Attr("content"); ok {
		b.WriteString(strings.TrimSpace(d))
		b.WriteString("\n")
	}
	doc.Find("article p, main p, p, pre, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.Join(strings.Fields(s.Text()), " "); len(t) > 20 {
			b.WriteString(t)
			b.WriteString("\n")
		}
		return b.Len() < r.opts.MaxChars
	})
	return r.clip(strings.TrimSpace(b.String())), nil
}

// Snippet asks the search endpoint for query and returns the top snippets
func (r *Resolver) Snippet(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	doc, err := r.fetch(ctx, r.opts.SnippetURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return "", err
	}
	var snips []string
	doc.Find(".result__snippet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			snips = append(snips, t)
		}
		return len(snips) < 3
	})
	return r.clip(strings.Join(snips, "\n")), nil
}

func (r *Resolver) fetch(ctx context.Context, link string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "linkresolve: bad url")
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "linkresolve: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, perr.FromStatus(resp.StatusCode, "linkresolve: %s status %d", link, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, perr.Newf(perr.ErrorCodeUpstream, "linkresolve: %s is %s", link, ct)
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUpstream, "linkresolve: parse html")
	}
	return doc, nil
}

func (r *Resolver) clip(s string) string {
	rs := []rune(s)
	if len(rs) <= r.opts.MaxChars {
		return s
	}
	return string(rs[:r.opts.MaxChars])
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
