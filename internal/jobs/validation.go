package jobs

import (
	"fmt"

	"github.com/smart-review/smart-review/internal/core"
)

// validateEvent ensures a review event carries everything a job needs
// before any network call is made.
func validateEvent(event *core.ReviewEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.RepoCloneURL == "" {
		return fmt.Errorf("repository clone URL cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
