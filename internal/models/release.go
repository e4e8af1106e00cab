package models

import (
	"errors"
	"time"
)

// ErrLatestReleaseNotFound is returned when a repository has no published release
var ErrLatestReleaseNotFound = errors.New("latest release not found")

// Release is a previously published release
type Release struct {
	Tag         string    `json:"tag" yaml:"tag"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

// Status states reported by the hosting platforms
const (
	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFailure = "failure"
	StatusError   = "error"
)

// Status is a single commit status check
type Status struct {
	Context     string `json:"context" yaml:"context"`
	State       string `json:"state" yaml:"state"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	TargetURL   string `json:"target_url,omitempty" yaml:"target_url,omitempty"`
}

// CombinedStatus is the aggregate status of a commit
type CombinedStatus struct {
	SHA        string   `json:"sha" yaml:"sha"`
	State      string   `json:"state" yaml:"state"`
	TotalCount int      `json:"total_count" yaml:"total_count"`
	Statuses   []Status `json:"statuses,omitempty" yaml:"statuses,omitempty"`
}

// NextRelease is a computed snapshot of what the next release would contain
type NextRelease struct {
	Project      Project        `json:"project" yaml:"project"`
	PreviousTag  string         `json:"previous_tag" yaml:"previous_tag"`
	Status       CombinedStatus `json:"status" yaml:"status"`
	PullRequests []PullRequest  `json:"pull_requests" yaml:"pull_requests"`
}

// NewNextRelease builds a NextRelease, copying the pull request slice so the
// snapshot does not share backing storage with the caller.
func NewNextRelease(project Project, previousTag string, status CombinedStatus, prs []PullRequest) *NextRelease {
	copied := make([]PullRequest, len(prs))
	copy(copied, prs)
	return &NextRelease{
		Project:      project,
		PreviousTag:  previousTag,
		Status:       status,
		PullRequests: copied,
	}
}
