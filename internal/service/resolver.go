package service

import (
	"context"
	"errors"
	"time"

	"github.com/ryo246912/gh-next-release/internal/github"
	"github.com/ryo246912/gh-next-release/internal/models"
)

// DefaultBotLogin is the account that pushes release automation commits
const DefaultBotLogin = "github-actions[bot]"

// NextReleaseResolver contains the business logic
type NextReleaseResolver struct {
	releases     github.Releases
	branches     github.Branches
	statuses     github.Statuses
	pullRequests github.PullRequests
	botLogin     string
}

// Option configures a NextReleaseResolver
type Option func(*NextReleaseResolver)

// WithBotLogin sets the author login whose pull requests are never released.
// The comparison is exact and case-sensitive.
func WithBotLogin(login string) Option {
	return func(r *NextReleaseResolver) {
		r.botLogin = login
	}
}

// NewNextReleaseResolver creates a new resolver instance
func NewNextReleaseResolver(
	releases github.Releases,
	branches github.Branches,
	statuses github.Statuses,
	pullRequests github.PullRequests,
	opts ...Option,
) *NextReleaseResolver {
	r := &NextReleaseResolver{
		releases:     releases,
		branches:     branches,
		statuses:     statuses,
		pullRequests: pullRequests,
		botLogin:     DefaultBotLogin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewNextReleaseResolverForClient creates a resolver backed by a single hosting client
func NewNextReleaseResolverForClient(client github.HostingClient, opts ...Option) *NextReleaseResolver {
	return NewNextReleaseResolver(client, client, client, client, opts...)
}

// BotLogin returns the excluded author login
func (r *NextReleaseResolver) BotLogin() string {
	return r.botLogin
}

// Resolve computes the next release of a project. Failing to find the stable
// branch or the latest release yields *CannotDetermineNextReleaseError, an empty
// set of qualifying pull requests yields *NoPullRequestsMergedSinceLastReleaseError,
// and every other collaborator error is returned unchanged.
func (r *NextReleaseResolver) Resolve(ctx context.Context, project models.Project) (*models.NextRelease, error) {
	branchName, err := project.Branch(ctx, r.branches)
	if err != nil {
		return nil, &CannotDetermineNextReleaseError{Project: project, Cause: err}
	}

	release, err := r.releases.Latest(ctx, project.Repository)
	if err != nil {
		if errors.Is(err, models.ErrLatestReleaseNotFound) {
			return nil, &CannotDetermineNextReleaseError{Project: project, Cause: err}
		}
		return nil, err
	}

	candidates, err := r.pullRequests.All(ctx, project.Repository, models.PullRequestFilter{
		State: models.PullRequestStateMerged,
		Base:  branchName,
	})
	if err != nil {
		return nil, err
	}

	merged := FilterMergedSince(candidates, r.botLogin, release.PublishedAt)
	if len(merged) == 0 {
		return nil, &NoPullRequestsMergedSinceLastReleaseError{Project: project, Since: release.PublishedAt}
	}

	branch, err := r.branches.Get(ctx, project.Repository, branchName)
	if err != nil {
		return nil, err
	}

	status, err := r.statuses.Combined(ctx, project.Repository, branch.HeadSHA)
	if err != nil {
		return nil, err
	}

	return models.NewNextRelease(project, release.Tag, *status, merged), nil
}

// FilterMergedSince keeps pull requests not authored by botLogin, marked merged,
// and merged strictly after since. A missing merge time does not exclude a pull
// request. An empty botLogin excludes nobody. Input order is preserved.
func FilterMergedSince(prs []models.PullRequest, botLogin string, since time.Time) []models.PullRequest {
	kept := make([]models.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if botLogin != "" && pr.Author == botLogin {
			continue
		}
		if !pr.IsMerged() {
			continue
		}
		if pr.MergedAt != nil && !pr.MergedAt.After(since) {
			continue
		}
		kept = append(kept, pr)
	}
	return kept
}
