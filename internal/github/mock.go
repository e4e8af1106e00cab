package github

import (
	"context"
	"fmt"
	"time"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// MockClient implements HostingClient for testing
type MockClient struct {
	// Control test behavior
	LatestRelease      *models.Release
	LatestReleaseError error
	DefaultBranch      string
	DefaultBranchError error
	BranchNames        []string
	BranchNamesError   error
	Branch             *models.Branch
	BranchError        error
	CombinedStatus     *models.CombinedStatus
	CombinedError      error
	PullRequests       []models.PullRequest
	PullRequestsError  error

	// Track method calls
	LatestCalled   bool
	DefaultCalled  bool
	ListCalled     bool
	GetCalled      bool
	CombinedCalled bool
	AllCalled      bool

	// Store call arguments for verification
	LastRepo   models.Repository
	LastBranch string
	LastSHA    string
	LastFilter models.PullRequestFilter
}

var _ HostingClient = (*MockClient)(nil)

// Latest mocks the latest release lookup
func (m *MockClient) Latest(ctx context.Context, repo models.Repository) (*models.Release, error) {
	m.LatestCalled = true
	m.LastRepo = repo
	return m.LatestRelease, m.LatestReleaseError
}

// Default mocks the default branch lookup
func (m *MockClient) Default(ctx context.Context, repo models.Repository) (string, error) {
	m.DefaultCalled = true
	m.LastRepo = repo
	return m.DefaultBranch, m.DefaultBranchError
}

// List mocks the branch listing
func (m *MockClient) List(ctx context.Context, repo models.Repository) ([]string, error) {
	m.ListCalled = true
	m.LastRepo = repo
	return m.BranchNames, m.BranchNamesError
}

// Get mocks the branch lookup
func (m *MockClient) Get(ctx context.Context, repo models.Repository, name string) (*models.Branch, error) {
	m.GetCalled = true
	m.LastRepo = repo
	m.LastBranch = name
	return m.Branch, m.BranchError
}

// Combined mocks the combined status lookup
func (m *MockClient) Combined(ctx context.Context, repo models.Repository, sha string) (*models.CombinedStatus, error) {
	m.CombinedCalled = true
	m.LastRepo = repo
	m.LastSHA = sha
	return m.CombinedStatus, m.CombinedError
}

// All mocks the pull request search
func (m *MockClient) All(ctx context.Context, repo models.Repository, filter models.PullRequestFilter) ([]models.PullRequest, error) {
	m.AllCalled = true
	m.LastRepo = repo
	m.LastFilter = filter
	return m.PullRequests, m.PullRequestsError
}

// Reset clears all tracking data for fresh test
func (m *MockClient) Reset() {
	m.LatestCalled = false
	m.DefaultCalled = false
	m.ListCalled = false
	m.GetCalled = false
	m.CombinedCalled = false
	m.AllCalled = false
	m.LastRepo = models.Repository{}
	m.LastBranch = ""
	m.LastSHA = ""
	m.LastFilter = models.PullRequestFilter{}
}

// AnyCalled reports whether any network-backed method was invoked
func (m *MockClient) AnyCalled() bool {
	return m.LatestCalled || m.DefaultCalled || m.ListCalled || m.GetCalled || m.CombinedCalled || m.AllCalled
}

// Helper functions for creating test data
func CreateTestPullRequest(number int, author string, mergedAt *time.Time) models.PullRequest {
	return models.PullRequest{
		Number:   number,
		Title:    fmt.Sprintf("Test PR #%d", number),
		URL:      fmt.Sprintf("https://github.com/acme/widgets/pull/%d", number),
		Author:   author,
		Merged:   true,
		MergedAt: mergedAt,
	}
}

// TimePtr parses an RFC 3339 timestamp and returns a pointer to it
func TimePtr(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

// Error helpers for testing error conditions
func NewAPIError(message string) error {
	return fmt.Errorf("API error: %s", message)
}

func NewNetworkError() error {
	return fmt.Errorf("network connection failed")
}
