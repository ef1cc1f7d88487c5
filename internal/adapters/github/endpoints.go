package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	maxJSONBody   = 1 << 20
	maxReadmeBody = 256 << 10
)

// Repo fetches a repository by owner/name
func (c *Client) Repo(ctx context.Context, owner, name string) (Repo, error) {
	var out Repo
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), &out)
	return out, err
}

// LatestCommit returns the committer date of the newest commit on the
// default branch; zero time when the repository is empty
func (c *Client) LatestCommit(ctx context.Context, owner, name string) (time.Time, error) {
	var out []Commit
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/commits?per_page=1", owner, name), &out); err != nil {
		return time.Time{}, err
	}
	if len(out) == 0 {
		return time.Time{}, nil
	}
	return out[0].Commit.Committer.Date, nil
}

// Readme returns the raw README text; "" with no error when there is none
func (c *Client) Readme(ctx context.Context, owner, name string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/readme", owner, name)
	resp, err := c.Do(ctx, http.MethodGet, path, "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	defer c.closeBody(resp, path)
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeBody))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SearchRepos runs a repository search sorted by stars
func (c *Client) SearchRepos(ctx context.Context, query string, perPage int) ([]Repo, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprint(perPage))
	var out SearchResult
	if err := c.getJSON(ctx, "/search/repositories?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return err
	}
	defer c.closeBody(resp, path)
	if resp.StatusCode == http.StatusNotFound {
		return notFound(path)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
