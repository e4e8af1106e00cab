package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ryo246912/gh-next-release/internal/config"
)

// SelectProject shows a searchable list of configured projects
func SelectProject(projects []config.ProjectConfig) (int, error) {
	if len(projects) == 0 {
		return 0, fmt.Errorf("no configured projects found")
	}

	items := ProjectItems(projects)
	prompt := promptui.Select{
		Label: "Select project",
		Items: items,
		Size:  12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return idx, nil
}

// ProjectItems formats projects as aligned prompt rows
func ProjectItems(projects []config.ProjectConfig) []string {
	items := make([]string, len(projects))
	for i, p := range projects {
		branch := p.StableBranch
		if branch == "" {
			branch = p.BranchRule
		}
		if branch == "" {
			branch = "default"
		}
		platform := p.Platform
		if platform == "" {
			platform = "github"
		}
		items[i] = fmt.Sprintf(
			"%s %s %s %s",
			PadRight(Truncate(p.DisplayName(), 24), 24),
			PadRight(Truncate(p.Repository, 40), 40),
			PadRight(branch, 12),
			platform,
		)
	}
	return items
}
