package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/auth"
	graphql "github.com/cli/shurcooL-graphql"
	gogithub "github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// pullRequestPageSize is the single page fetched by a pull request search
const pullRequestPageSize = 100

// Client wraps GitHub API clients. REST calls go through go-github and GraphQL
// calls through go-gh, both sharing the gh authentication.
type Client struct {
	rest *gogithub.Client
	gql  *api.GraphQLClient
	log  *zap.SugaredLogger
}

// NewClient creates a client from go-gh options. An empty Host or AuthToken is
// resolved from the gh configuration and environment.
func NewClient(opts api.ClientOptions, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Host == "" {
		opts.Host, _ = auth.DefaultHost()
	}

	httpClient, err := api.NewHTTPClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	gqlClient, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	rest, err := newRESTClient(httpClient, opts.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	return &Client{
		rest: rest,
		gql:  gqlClient,
		log:  log,
	}, nil
}

func newRESTClient(httpClient *http.Client, host string) (*gogithub.Client, error) {
	client := gogithub.NewClient(httpClient)
	if isEnterprise(host) {
		return client.WithEnterpriseURLs("https://"+host+"/api/v3/", "https://"+host+"/api/uploads/")
	}
	return client, nil
}

func isEnterprise(host string) bool {
	h := strings.ToLower(host)
	return h != "" && h != "github.com" && h != "api.github.com" && h != "github.localhost"
}

// Latest fetches the most recently published release
func (c *Client) Latest(ctx context.Context, repo models.Repository) (*models.Release, error) {
	defer c.timed("latest release", repo)()

	release, resp, err := c.rest.Repositories.GetLatestRelease(ctx, repo.Owner, repo.Name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, models.ErrLatestReleaseNotFound
		}
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	return &models.Release{
		Tag:         release.GetTagName(),
		Name:        release.GetName(),
		URL:         release.GetHTMLURL(),
		PublishedAt: release.GetPublishedAt().Time,
	}, nil
}

// Default fetches the repository's default branch name
func (c *Client) Default(ctx context.Context, repo models.Repository) (string, error) {
	defer c.timed("repository", repo)()

	r, _, err := c.rest.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repository: %w", err)
	}
	return r.GetDefaultBranch(), nil
}

// List fetches the first page of branch names
func (c *Client) List(ctx context.Context, repo models.Repository) ([]string, error) {
	defer c.timed("branches", repo)()

	opts := &gogithub.BranchListOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	branches, _, err := c.rest.Repositories.ListBranches(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.GetName())
	}
	return names, nil
}

// Get fetches a branch and its head commit
func (c *Client) Get(ctx context.Context, repo models.Repository, name string) (*models.Branch, error) {
	defer c.timed("branch "+name, repo)()

	b, _, err := c.rest.Repositories.GetBranch(ctx, repo.Owner, repo.Name, name, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch %s: %w", name, err)
	}
	return &models.Branch{
		Name:    b.GetName(),
		HeadSHA: b.GetCommit().GetSHA(),
	}, nil
}

// Combined fetches the combined status of a commit
func (c *Client) Combined(ctx context.Context, repo models.Repository, sha string) (*models.CombinedStatus, error) {
	defer c.timed("combined status "+sha, repo)()

	cs, _, err := c.rest.Repositories.GetCombinedStatus(ctx, repo.Owner, repo.Name, sha, &gogithub.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch combined status: %w", err)
	}

	statuses := make([]models.Status, 0, len(cs.Statuses))
	for _, s := range cs.Statuses {
		statuses = append(statuses, models.Status{
			Context:     s.GetContext(),
			State:       s.GetState(),
			Description: s.GetDescription(),
			TargetURL:   s.GetTargetURL(),
		})
	}

	return &models.CombinedStatus{
		SHA:        cs.GetSHA(),
		State:      cs.GetState(),
		TotalCount: cs.GetTotalCount(),
		Statuses:   statuses,
	}, nil
}

// PullRequestState mirrors the GraphQL enum of the same name
type PullRequestState string

func graphQLStates(state models.PullRequestState) []PullRequestState {
	switch state {
	case models.PullRequestStateOpen:
		return []PullRequestState{"OPEN"}
	case models.PullRequestStateClosed:
		return []PullRequestState{"CLOSED"}
	case models.PullRequestStateMerged:
		return []PullRequestState{"MERGED"}
	default:
		return []PullRequestState{"OPEN", "CLOSED", "MERGED"}
	}
}

// All searches pull requests using GraphQL. The REST pulls endpoint cannot
// filter on the merged state, the GraphQL connection can.
func (c *Client) All(ctx context.Context, repo models.Repository, filter models.PullRequestFilter) ([]models.PullRequest, error) {
	defer c.timed("pull requests", repo)()

	var q struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number      int
					Title       string
					URL         string
					Merged      bool
					MergedAt    *time.Time
					BaseRefName string
					Author      struct {
						Login string
					}
					Labels struct {
						Nodes []struct {
							Name string
						}
					} `graphql:"labels(first: 20)"`
				}
			} `graphql:"pullRequests(states: $states, baseRefName: $base, first: $first, orderBy: {field: UPDATED_AT, direction: DESC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	var base *graphql.String
	if filter.Base != "" {
		b := graphql.String(filter.Base)
		base = &b
	}

	variables := map[string]interface{}{
		"owner":  graphql.String(repo.Owner),
		"name":   graphql.String(repo.Name),
		"states": graphQLStates(filter.State),
		"base":   base,
		"first":  graphql.Int(pullRequestPageSize),
	}

	if err := c.gql.QueryWithContext(ctx, "NextReleasePullRequests", &q, variables); err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}

	prs := make([]models.PullRequest, 0, len(q.Repository.PullRequests.Nodes))
	for _, node := range q.Repository.PullRequests.Nodes {
		var labels []string
		for _, l := range node.Labels.Nodes {
			labels = append(labels, l.Name)
		}
		prs = append(prs, models.PullRequest{
			Number:   node.Number,
			Title:    node.Title,
			URL:      node.URL,
			Author:   node.Author.Login,
			Merged:   node.Merged,
			MergedAt: node.MergedAt,
			Base:     node.BaseRefName,
			Labels:   labels,
		})
	}
	return prs, nil
}

// timed logs the duration of an API call at debug level
func (c *Client) timed(what string, repo models.Repository) func() {
	start := time.Now()
	return func() {
		c.log.Debugw("github api call",
			"call", what,
			"repository", repo.FullName(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	}
}
