package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryo246912/gh-next-release/internal/config"
)

func TestProjectItems(t *testing.T) {
	items := ProjectItems([]config.ProjectConfig{
		{Name: "widgets", Repository: "acme/widgets", StableBranch: "2.x"},
		{Repository: "group/sub/gadgets", Platform: "gitlab", BranchRule: "newest"},
		{Name: "tools", Repository: "acme/tools"},
	})
	require.Len(t, items, 3)

	assert.True(t, strings.HasPrefix(items[0], "widgets "))
	assert.Contains(t, items[0], "acme/widgets")
	assert.Contains(t, items[0], "2.x")
	assert.True(t, strings.HasSuffix(items[0], "github"))

	assert.True(t, strings.HasPrefix(items[1], "group/sub/gadgets "))
	assert.Contains(t, items[1], "newest")
	assert.True(t, strings.HasSuffix(items[1], "gitlab"))

	assert.Contains(t, items[2], "default")

	// rows are aligned on display width
	assert.Equal(t, strings.Index(items[0], "acme/widgets"), strings.Index(items[2], "acme/tools"))
}

func TestSelectProject_Empty(t *testing.T) {
	_, err := SelectProject(nil)
	assert.Error(t, err)
}
