package models

import "time"

// PullRequestState is the state filter passed to a pull request search
type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateClosed PullRequestState = "closed"
	PullRequestStateMerged PullRequestState = "merged"
)

// PullRequest represents PR metadata needed to decide and present a release
type PullRequest struct {
	Number   int        `json:"number" yaml:"number"`
	Title    string     `json:"title" yaml:"title"`
	URL      string     `json:"url" yaml:"url"`
	Author   string     `json:"author" yaml:"author"`
	Merged   bool       `json:"merged" yaml:"merged"`
	MergedAt *time.Time `json:"merged_at,omitempty" yaml:"merged_at,omitempty"`
	Base     string     `json:"base" yaml:"base"`
	Labels   []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// IsMerged reports whether the pull request has been merged
func (p PullRequest) IsMerged() bool {
	return p.Merged
}

// PullRequestFilter narrows a pull request search on the hosting platform
type PullRequestFilter struct {
	State PullRequestState
	Base  string
}
