package github

import (
	"context"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// Releases looks up published releases
type Releases interface {
	// Latest returns the most recently published release or models.ErrLatestReleaseNotFound
	Latest(ctx context.Context, repo models.Repository) (*models.Release, error)
}

// Branches looks up branches of a repository
type Branches interface {
	models.BranchLookup
	Get(ctx context.Context, repo models.Repository, name string) (*models.Branch, error)
}

// Statuses looks up commit statuses
type Statuses interface {
	Combined(ctx context.Context, repo models.Repository, sha string) (*models.CombinedStatus, error)
}

// PullRequests searches pull requests
type PullRequests interface {
	All(ctx context.Context, repo models.Repository, filter models.PullRequestFilter) ([]models.PullRequest, error)
}

// HostingClient is everything the next release resolver needs from a hosting platform
type HostingClient interface {
	Releases
	Branches
	Statuses
	PullRequests
}

// Ensure Client implements HostingClient interface
var _ HostingClient = (*Client)(nil)
