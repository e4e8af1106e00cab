package service

import (
	"fmt"
	"time"

	"github.com/ryo246912/gh-next-release/internal/models"
)

// CannotDetermineNextReleaseError is returned when the stable branch or the
// latest release of a project cannot be established.
type CannotDetermineNextReleaseError struct {
	Project models.Project
	Cause   error
}

func (e *CannotDetermineNextReleaseError) Error() string {
	return fmt.Sprintf("cannot determine next release for %s: %v", e.Project.Repository, e.Cause)
}

func (e *CannotDetermineNextReleaseError) Unwrap() error {
	return e.Cause
}

// NoPullRequestsMergedSinceLastReleaseError is returned when nothing qualifying
// was merged after the latest release was published.
type NoPullRequestsMergedSinceLastReleaseError struct {
	Project models.Project
	Since   time.Time
}

func (e *NoPullRequestsMergedSinceLastReleaseError) Error() string {
	return fmt.Sprintf("no pull requests merged into %s since %s", e.Project.Repository, e.Since.Format(time.RFC3339))
}
