package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smart-review/smart-review/internal/config"
	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/github"
	"github.com/smart-review/smart-review/internal/gitutil"
	"github.com/smart-review/smart-review/internal/llm"
	"github.com/smart-review/smart-review/internal/review"
	"github.com/smart-review/smart-review/internal/storage"
)

// ReviewJob performs one LLM-driven pull-request review per event: it
// authenticates as the App installation, clones the head commit, runs the
// review loop, and records the outcome.
type ReviewJob struct {
	cfg    *config.Config
	llm    llm.Gateway
	store  storage.Store
	logger *slog.Logger
}

// NewReviewJob creates a ReviewJob. The store may be nil when review
// history persistence is disabled.
func NewReviewJob(cfg *config.Config, gateway llm.Gateway, store storage.Store, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if gateway == nil {
		panic("llm gateway cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{cfg: cfg, llm: gateway, store: store, logger: logger}
}

// Run executes the review for a single event.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("event validation failed", "error", err)
		return fmt.Errorf("event validation failed: %w", err)
	}

	j.logger.Info("starting review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	ghClient, token, err := github.CreateInstallationClient(ctx, j.cfg.GitHub, event.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	statusUpdater := github.NewStatusUpdater(ghClient)
	checkRunID, err := statusUpdater.InProgress(ctx, event, "Code Review", "Review in progress...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	result, err := j.runReview(ctx, ghClient, token, event)
	if err != nil {
		j.failCheckRun(ctx, statusUpdater, event, checkRunID, err)
		return err
	}

	summary := fmt.Sprintf("Review finished: %s after %d round(s)", result.State, result.Rounds)
	if err := statusUpdater.Completed(ctx, event, checkRunID, checkConclusion(result.State), "Review Complete", summary); err != nil {
		j.logger.Error("failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.saveRecord(ctx, event, result)

	j.logger.Info("review job completed",
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"state", result.State,
		"rounds", result.Rounds,
	)
	return nil
}

// runReview clones the head commit and drives the review loop against it.
func (j *ReviewJob) runReview(ctx context.Context, ghClient github.Client, token string, event *core.ReviewEvent) (*review.Result, error) {
	cloneCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cloner := gitutil.NewClient(j.logger)
	repoPath, cleanup, err := cloner.CloneAndCheckoutTemp(cloneCtx, event.RepoCloneURL, event.HeadSHA, token)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	defer cleanup()

	repoCfg, err := config.LoadRepoConfig(repoPath)
	if err != nil {
		if !errors.Is(err, config.ErrRepoConfigNotFound) {
			return nil, fmt.Errorf("failed to load repo config: %w", err)
		}
		j.logger.Debug("no .smart-review.yml found, using defaults", "repo", event.RepoFullName)
	}

	prompts, err := llm.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	if repoCfg.PromptTemplate != "" {
		if err := prompts.SetOverride(llm.CodeReviewPrompt, repoCfg.PromptTemplate); err != nil {
			return nil, fmt.Errorf("invalid prompt_template in .smart-review.yml: %w", err)
		}
		j.logger.Info("using repository prompt template override", "repo", event.RepoFullName)
	}

	fileSource := gitutil.NewTreeFileSource(repoPath, event.HeadSHA, repoCfg)
	source := github.NewGateway(ghClient, event.RepoOwner, event.RepoName, event.PRNumber, j.logger,
		github.WithFileSource(fileSource))

	orchestrator := review.New(source, j.llm, prompts, j.logger)
	return orchestrator.Run(ctx, j.cfg.Review.MaxRecursion)
}

// saveRecord persists the outcome. Persistence failures are logged, not
// returned; the review itself already happened on GitHub.
func (j *ReviewJob) saveRecord(ctx context.Context, event *core.ReviewEvent, result *review.Result) {
	if j.store == nil {
		return
	}
	record := &core.ReviewRecord{
		RepoFullName: event.RepoFullName,
		PRNumber:     event.PRNumber,
		HeadSHA:      event.HeadSHA,
		State:        result.State,
		Summary:      result.Summary,
		Rounds:       result.Rounds,
	}
	if err := j.store.SaveReview(ctx, record); err != nil {
		j.logger.Error("failed to save review record", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}
}

func (j *ReviewJob) failCheckRun(ctx context.Context, updater github.StatusUpdater, event *core.ReviewEvent, checkRunID int64, cause error) {
	if err := updater.Completed(ctx, event, checkRunID, "failure", "Review Failed", cause.Error()); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
}

func checkConclusion(state core.ReviewState) string {
	if state == core.Accepted {
		return "success"
	}
	// A changes-requested review is still a completed run, not a failed check.
	return "neutral"
}
