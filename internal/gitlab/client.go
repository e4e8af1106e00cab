package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xanzy/go-gitlab"
	"go.uber.org/zap"

	"github.com/ryo246912/gh-next-release/internal/github"
	"github.com/ryo246912/gh-next-release/internal/models"
)

// DefaultBaseURL is the API root of gitlab.com
const DefaultBaseURL = "https://gitlab.com/api/v4"

// Client implements the hosting capabilities on top of the GitLab API
type Client struct {
	client *gitlab.Client
	log    *zap.SugaredLogger
}

var _ github.HostingClient = (*Client)(nil)

// Option configures the GitLab client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// WithBaseURL sets the API root, e.g. https://gitlab.example.com/api/v4
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger for API call tracing.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NewClient creates a new GitLab client.
func NewClient(token string, opts ...Option) (*Client, error) {
	o := options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop().Sugar()
	}

	clientOpts := []gitlab.ClientOptionFunc{gitlab.WithBaseURL(o.baseURL)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(o.httpClient))
	}

	c, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &Client{client: c, log: o.log}, nil
}

// Latest fetches the most recently released release
func (c *Client) Latest(ctx context.Context, repo models.Repository) (*models.Release, error) {
	defer c.timed("latest release", repo)()

	opts := &gitlab.ListReleasesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
		OrderBy:     gitlab.Ptr("released_at"),
		Sort:        gitlab.Ptr("desc"),
	}
	releases, resp, err := c.client.Releases.ListReleases(repo.FullName(), opts, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, models.ErrLatestReleaseNotFound
		}
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	if len(releases) == 0 {
		return nil, models.ErrLatestReleaseNotFound
	}

	r := releases[0]
	release := &models.Release{
		Tag:  r.TagName,
		Name: r.Name,
	}
	switch {
	case r.ReleasedAt != nil:
		release.PublishedAt = *r.ReleasedAt
	case r.CreatedAt != nil:
		release.PublishedAt = *r.CreatedAt
	}
	return release, nil
}

// Default fetches the project's default branch name
func (c *Client) Default(ctx context.Context, repo models.Repository) (string, error) {
	defer c.timed("project", repo)()

	project, _, err := c.client.Projects.GetProject(repo.FullName(), nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch project: %w", err)
	}
	return project.DefaultBranch, nil
}

// List fetches the first page of branch names
func (c *Client) List(ctx context.Context, repo models.Repository) ([]string, error) {
	defer c.timed("branches", repo)()

	opts := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	branches, _, err := c.client.Branches.ListBranches(repo.FullName(), opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	return names, nil
}

// Get fetches a branch and its head commit
func (c *Client) Get(ctx context.Context, repo models.Repository, name string) (*models.Branch, error) {
	defer c.timed("branch "+name, repo)()

	b, _, err := c.client.Branches.GetBranch(repo.FullName(), name, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch %s: %w", name, err)
	}

	branch := &models.Branch{Name: b.Name}
	if b.Commit != nil {
		branch.HeadSHA = b.Commit.ID
	}
	return branch, nil
}

// Combined fetches the latest status of every job on a commit and combines them
func (c *Client) Combined(ctx context.Context, repo models.Repository, sha string) (*models.CombinedStatus, error) {
	defer c.timed("commit statuses "+sha, repo)()

	opts := &gitlab.GetCommitStatusesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	statuses, _, err := c.client.Commits.GetCommitStatuses(repo.FullName(), sha, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commit statuses: %w", err)
	}

	combined := &models.CombinedStatus{
		SHA:        sha,
		TotalCount: len(statuses),
		Statuses:   make([]models.Status, 0, len(statuses)),
	}
	states := make([]string, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, s.Status)
		combined.Statuses = append(combined.Statuses, models.Status{
			Context:     s.Name,
			State:       s.Status,
			Description: s.Description,
			TargetURL:   s.TargetURL,
		})
	}
	combined.State = CombineStates(states)
	return combined, nil
}

// CombineStates folds GitLab job states into a single GitHub style state.
// Any failure wins, then anything unfinished; no statuses at all is pending.
func CombineStates(states []string) string {
	if len(states) == 0 {
		return models.StatusPending
	}

	pending := false
	for _, s := range states {
		switch s {
		case "failed", "canceled":
			return models.StatusFailure
		case "success", "skipped":
		default:
			// created, waiting_for_resource, preparing, pending, running, manual, scheduled
			pending = true
		}
	}
	if pending {
		return models.StatusPending
	}
	return models.StatusSuccess
}

// All lists merge requests of the project
func (c *Client) All(ctx context.Context, repo models.Repository, filter models.PullRequestFilter) ([]models.PullRequest, error) {
	defer c.timed("merge requests", repo)()

	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		OrderBy:     gitlab.Ptr("updated_at"),
		Sort:        gitlab.Ptr("desc"),
	}
	if filter.State != "" {
		opts.State = gitlab.Ptr(string(filter.State))
	}
	if filter.Base != "" {
		opts.TargetBranch = gitlab.Ptr(filter.Base)
	}

	mrs, _, err := c.client.MergeRequests.ListProjectMergeRequests(repo.FullName(), opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}

	prs := make([]models.PullRequest, 0, len(mrs))
	for _, mr := range mrs {
		pr := models.PullRequest{
			Number:   mr.IID,
			Title:    mr.Title,
			URL:      mr.WebURL,
			Merged:   mr.State == "merged",
			MergedAt: mr.MergedAt,
			Base:     mr.TargetBranch,
			Labels:   []string(mr.Labels),
		}
		if mr.Author != nil {
			pr.Author = mr.Author.Username
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

// timed logs the duration of an API call at debug level
func (c *Client) timed(what string, repo models.Repository) func() {
	start := time.Now()
	return func() {
		c.log.Debugw("gitlab api call",
			"call", what,
			"project", repo.FullName(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	}
}
