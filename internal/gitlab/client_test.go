package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryo246912/gh-next-release/internal/models"
)

var testRepo = models.Repository{Owner: "acme", Name: "widgets"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient("test-token", WithBaseURL(server.URL+"/api/v4"))
	require.NoError(t, err)
	return c
}

func TestClient_Latest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets/releases", r.URL.EscapedPath())
		assert.Equal(t, "test-token", r.Header.Get("PRIVATE-TOKEN"))
		assert.Equal(t, "released_at", r.URL.Query().Get("order_by"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"tag_name": "v2.3.0", "name": "2.3.0", "released_at": "2024-01-01T00:00:00Z", "created_at": "2023-12-31T00:00:00Z"},
		})
	})

	release, err := client.Latest(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, "v2.3.0", release.Tag)
	assert.True(t, release.PublishedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestClient_Latest_NoReleases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Latest(context.Background(), testRepo)
	assert.ErrorIs(t, err, models.ErrLatestReleaseNotFound)
}

func TestClient_Latest_ProjectNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "404 Project Not Found"}`))
	})

	_, err := client.Latest(context.Background(), testRepo)
	assert.ErrorIs(t, err, models.ErrLatestReleaseNotFound)
}

func TestClient_Default(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                  123,
			"path_with_namespace": "acme/widgets",
			"default_branch":      "main",
		})
	})

	name, err := client.Default(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, "main", name)
}

func TestClient_List(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets/repository/branches", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "main"},
			{"name": "1.x"},
		})
	})

	names, err := client.List(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "1.x"}, names)
}

func TestClient_Get(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets/repository/branches/2.x", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"name":   "2.x",
			"commit": map[string]interface{}{"id": "abc123"},
		})
	})

	branch, err := client.Get(context.Background(), testRepo, "2.x")
	require.NoError(t, err)
	assert.Equal(t, &models.Branch{Name: "2.x", HeadSHA: "abc123"}, branch)
}

func TestClient_Combined(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets/repository/commits/abc123/statuses", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "build", "status": "success"},
			{"name": "test", "status": "running", "target_url": "https://ci.example.com/2"},
		})
	})

	status, err := client.Combined(context.Background(), testRepo, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", status.SHA)
	assert.Equal(t, models.StatusPending, status.State)
	assert.Equal(t, 2, status.TotalCount)
	require.Len(t, status.Statuses, 2)
	assert.Equal(t, "test", status.Statuses[1].Context)
	assert.Equal(t, "https://ci.example.com/2", status.Statuses[1].TargetURL)
}

func TestClient_All(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/acme%2Fwidgets/merge_requests", r.URL.EscapedPath())
		assert.Equal(t, "merged", r.URL.Query().Get("state"))
		assert.Equal(t, "2.x", r.URL.Query().Get("target_branch"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"iid": 12, "title": "Add gizmo", "web_url": "https://gitlab.com/acme/widgets/-/merge_requests/12",
			 "state": "merged", "merged_at": "2024-02-10T00:00:00Z", "target_branch": "2.x",
			 "author": {"username": "bob"}, "labels": ["feature"]},
			{"iid": 13, "title": "Legacy import", "state": "merged", "merged_at": null,
			 "target_branch": "2.x", "author": {"username": "carol"}}
		]`))
	})

	prs, err := client.All(context.Background(), testRepo, models.PullRequestFilter{
		State: models.PullRequestStateMerged,
		Base:  "2.x",
	})
	require.NoError(t, err)
	require.Len(t, prs, 2)

	assert.Equal(t, 12, prs[0].Number)
	assert.Equal(t, "bob", prs[0].Author)
	assert.True(t, prs[0].IsMerged())
	require.NotNil(t, prs[0].MergedAt)
	assert.Equal(t, []string{"feature"}, prs[0].Labels)

	assert.Equal(t, "carol", prs[1].Author)
	assert.Nil(t, prs[1].MergedAt)
}

func TestCombineStates(t *testing.T) {
	tests := []struct {
		name     string
		states   []string
		expected string
	}{
		{name: "no statuses", states: nil, expected: models.StatusPending},
		{name: "all success", states: []string{"success", "success"}, expected: models.StatusSuccess},
		{name: "skipped counts as success", states: []string{"success", "skipped"}, expected: models.StatusSuccess},
		{name: "running is pending", states: []string{"success", "running"}, expected: models.StatusPending},
		{name: "manual is pending", states: []string{"manual"}, expected: models.StatusPending},
		{name: "failure wins over pending", states: []string{"running", "failed"}, expected: models.StatusFailure},
		{name: "canceled is failure", states: []string{"success", "canceled"}, expected: models.StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CombineStates(tt.states))
		})
	}
}
