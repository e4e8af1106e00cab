package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// Status colors
var (
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorPending = lipgloss.Color("#F59E0B") // Amber
	colorFailure = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#9CA3AF") // Gray
)

const titleWidth = 60

// RenderNextRelease writes the next release report in the given format
func RenderNextRelease(w io.Writer, next *models.NextRelease, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(next); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(next); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case "text", "":
		return renderText(w, next)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, next *models.NextRelease) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	muted := r.NewStyle().Foreground(colorMuted)

	var b strings.Builder

	title := next.Project.Repository.FullName()
	if next.Project.StableBranch != "" {
		title += " (" + next.Project.StableBranch + ")"
	}
	b.WriteString(heading.Render(title))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Previous release: %s\n", next.PreviousTag)
	fmt.Fprintf(&b, "Status:           %s %s\n",
		r.NewStyle().Foreground(statusColor(next.Status.State)).Render(next.Status.State),
		muted.Render(fmt.Sprintf("(%s, %d checks)", shortSHA(next.Status.SHA), next.Status.TotalCount)),
	)
	b.WriteString("\n")

	b.WriteString(heading.Render(fmt.Sprintf("Pull requests (%d)", len(next.PullRequests))))
	b.WriteString("\n")
	for _, pr := range next.PullRequests {
		merged := "-"
		if pr.MergedAt != nil {
			merged = pr.MergedAt.UTC().Format("2006-01-02")
		}
		fmt.Fprintf(&b, "#%s %s %s %s\n",
			PadRight(fmt.Sprintf("%-6d", pr.Number), 7),
			PadRight(Truncate(pr.Title, titleWidth), titleWidth),
			PadRight(pr.Author, 20),
			muted.Render(merged),
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// statusColor maps a status state to its color
func statusColor(state string) lipgloss.Color {
	switch state {
	case models.StatusSuccess:
		return colorSuccess
	case models.StatusPending:
		return colorPending
	case models.StatusFailure, models.StatusError:
		return colorFailure
	default:
		return colorMuted
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
