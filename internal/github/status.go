package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/smart-review/smart-review/internal/core"
)

// StatusUpdater reports review progress through GitHub Check Runs, so PR
// authors can see a review is underway before any comment lands.
type StatusUpdater interface {
	InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error
}

type statusUpdater struct {
	client Client
}

// NewStatusUpdater creates a StatusUpdater over the given client.
func NewStatusUpdater(client Client) StatusUpdater {
	return &statusUpdater{client: client}
}

// InProgress creates a new check run with an "in_progress" status.
func (s *statusUpdater) InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    "Smart Review",
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing check run to a "completed" status.
func (s *statusUpdater) Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error {
	now := time.Now()
	opts := github.UpdateCheckRunOptions{
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: now},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}
