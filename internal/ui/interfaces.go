package ui

import "github.com/ryo246912/gh-next-release/internal/config"

// Prompter defines interface for user interaction
type Prompter interface {
	SelectProject(projects []config.ProjectConfig) (int, error)
}

// DefaultPrompter implements the actual prompting logic
type DefaultPrompter struct{}

// SelectProject prompts user to select a project
func (p *DefaultPrompter) SelectProject(projects []config.ProjectConfig) (int, error) {
	return SelectProject(projects)
}

// MockPrompter for testing
type MockPrompter struct {
	SelectedProject       int
	ProjectSelectionError error

	// Call tracking
	SelectProjectCalled bool
	LastProjects        []config.ProjectConfig
}

// SelectProject mocks project selection
func (m *MockPrompter) SelectProject(projects []config.ProjectConfig) (int, error) {
	m.SelectProjectCalled = true
	m.LastProjects = projects
	return m.SelectedProject, m.ProjectSelectionError
}
