package github

import "time"

// Repo is a partial GitHub repository document with fields we use
type Repo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Owner         User      `json:"owner"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	Topics        []string  `json:"topics"`
	ForksCount    int       `json:"forks_count"`
	Stargazers    int       `json:"stargazers_count"`
	OpenIssues    int       `json:"open_issues_count"`
	Archived      bool      `json:"archived"`
	Fork          bool      `json:"fork"`
	PushedAt      time.Time `json:"pushed_at"`
	CreatedAt     time.Time `json:"created_at"`
	HTMLURL       string    `json:"html_url"`
}

// User is a partial GitHub user or org document
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Commit is a partial list-commits entry
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
		Message string `json:"message"`
	} `json:"commit"`
}

// SearchResult is the repository search envelope
type SearchResult struct {
	TotalCount int    `json:"total_count"`
	Items      []Repo `json:"items"`
}
