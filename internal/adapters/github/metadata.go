package github

import (
	"context"

	"trawler/internal/core/rubric"
)

// Metadata adapts the client to the scorer's MetadataSource. Each lookup
// costs at most three requests: repository, newest commit and README
type Metadata struct{ c *Client }

// NewMetadata wraps c
func NewMetadata(c *Client) *Metadata { return &Metadata{c: c} }

// Repo implements rubric.MetadataSource. Only the repository document is
// required; commit and README failures leave those fields empty
func (m *Metadata) Repo(ctx context.Context, slug string) (*rubric.RepoMetadata, error) {
	owner, name, err := splitSlug(slug)
	if err != nil {
		return nil, err
	}
	r, err := m.c.Repo(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	md := &rubric.RepoMetadata{
		Stars:      r.Stargazers,
		Forks:      r.ForksCount,
		OpenIssues: r.OpenIssues,
		Archived:   r.Archived,
		PushedAt:   r.PushedAt,
	}
	if r.Archived {
		return md, nil
	}
	if t, err := m.c.LatestCommit(ctx, owner, name); err == nil {
		md.LastCommit = t
	} else {
		m.c.log.Debug().Err(err).Str("repo", slug).Msg("github latest commit lookup failed")
	}
	if readme, err := m.c.Readme(ctx, owner, name); err == nil {
		md.Readme = readme
	} else {
		m.c.log.Debug().Err(err).Str("repo", slug).Msg("github readme lookup failed")
	}
	return md, nil
}
