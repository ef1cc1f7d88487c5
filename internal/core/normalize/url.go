package normalize

import (
	"net/url"
	"strings"
)

// tracking parameters that never change what a link points at
var trackingParams = map[string]bool{
	"ref": true, "ref_src": true, "ref_url": true, "source": true,
	"fbclid": true, "gclid": true, "mc_cid": true, "mc_eid": true,
	"s": true, "t": true, "si": true,
}

// codeHosts truncate to owner/repo so deep links into a repo share its key
var codeHosts = map[string]bool{
	"github.com": true, "gitlab.com": true, "codeberg.org": true, "bitbucket.org": true,
}

// URL canonicalizes a link into a scheme-less key: lowercased host without
// "www.", no fragment, no tracking params, no trailing slash, and code-host
// links cut to the repository root. Returns "" when raw has no host
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")

	if codeHosts[host] {
		parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
		if len(parts) >= 2 {
			path = "/" + strings.ToLower(parts[0]) + "/" + strings.ToLower(strings.TrimSuffix(parts[1], ".git"))
		}
		return host + path
	}

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") || trackingParams[strings.ToLower(k)] {
			q.Del(k)
		}
	}
	out := host + path
	if enc := q.Encode(); enc != "" {
		out += "?" + enc
	}
	return out
}

// IsCodeHost reports whether raw points into a repository on a known code host
func IsCodeHost(raw string) bool {
	k := URL(raw)
	host, rest, ok := strings.Cut(k, "/")
	return ok && codeHosts[host] && strings.Contains(rest, "/")
}

// RepoSlug returns "owner/repo" for github links, "" otherwise
func RepoSlug(raw string) string {
	k := URL(raw)
	if slug, ok := strings.CutPrefix(k, "github.com/"); ok && strings.Count(slug, "/") == 1 {
		return slug
	}
	return ""
}
