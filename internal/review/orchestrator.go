// Package review implements the pull-request review loop: prompt the LLM,
// classify its reply, post a terminal review or gather the additional
// repository files it asked for and go around again within a bounded
// recursion budget.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/llm"
)

// SourceGateway is the source-control capability the orchestrator consumes.
// Accessors are synchronous and cheap to call repeatedly; caching is the
// gateway's concern, not the orchestrator's. All failures surface as
// *core.GatewayError.
//
//go:generate mockgen -destination=../../mocks/mock_source_gateway.go -package=mocks . SourceGateway
type SourceGateway interface {
	DiffText(ctx context.Context) (string, error)
	PRContext(ctx context.Context) (string, error)
	RepositoryDescription(ctx context.Context) (string, error)

	// RepositoryFiles returns the path to content mapping used to resolve
	// additional-files requests. The listing is fixed at review start.
	RepositoryFiles(ctx context.Context) (map[string]string, error)

	CreatePositiveReview(ctx context.Context, message string) (*core.ReviewHandle, error)
	CreateNegativeReview(ctx context.Context, message string, fileReviews []core.FileReview) (*core.ReviewHandle, error)
}

// PromptBuilder renders a review context into a single prompt string.
type PromptBuilder interface {
	BuildReviewPrompt(rc core.ReviewContext) (string, error)
}

// Result is the terminal outcome of a completed review loop.
type Result struct {
	State  core.ReviewState
	Handle *core.ReviewHandle

	// Summary is the model's overall message from the terminal reply.
	Summary string

	// Rounds is the number of LLM round-trips the review took, including
	// the terminal one.
	Rounds int
}

// Orchestrator drives one pull-request review to a terminal outcome. An
// instance serves a single review invocation; independent reviews get
// independent orchestrators and share no state.
type Orchestrator struct {
	source  SourceGateway
	llm     llm.Gateway
	prompts PromptBuilder
	logger  *slog.Logger
}

// New creates an orchestrator over the given gateways.
func New(source SourceGateway, gateway llm.Gateway, prompts PromptBuilder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:  source,
		llm:     gateway,
		prompts: prompts,
		logger:  logger,
	}
}

// Run executes the review loop with the given recursion ceiling and returns
// the terminal result. The recursion is implemented as a loop carrying an
// explicit context rather than call recursion, so the ceiling is a plain
// loop invariant: an additional-files reply arriving with an exhausted
// budget aborts with core.ErrRecursionExhausted instead of looping on.
//
// Rounds run strictly sequentially; the single blocking point per round is
// the LLM gateway call. Gateway and parse failures abort the whole review
// with no retry.
func (o *Orchestrator) Run(ctx context.Context, maxRecursion int) (*Result, error) {
	if maxRecursion < 0 {
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("max recursion must be >= 0, got %d", maxRecursion)}
	}

	rc, err := o.buildInitialContext(ctx, maxRecursion)
	if err != nil {
		return nil, err
	}

	for round := 1; ; round++ {
		prompt, err := o.prompts.BuildReviewPrompt(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to build review prompt: %w", err)
		}

		o.logger.Debug("sending review prompt",
			"round", round,
			"recursions_remaining", rc.RecursionsRemaining,
			"prompt_bytes", len(prompt),
		)

		raw, err := o.llm.SendPrompt(ctx, prompt)
		if err != nil {
			return nil, err
		}

		outcome, err := llm.ParseOutcome(raw)
		if err != nil {
			return nil, err
		}

		switch out := outcome.(type) {
		case core.PositiveReview:
			handle, err := o.source.CreatePositiveReview(ctx, out.Message)
			if err != nil {
				return nil, err
			}
			o.logger.Info("positive review created", "rounds", round)
			return &Result{State: core.Accepted, Handle: handle, Summary: out.Message, Rounds: round}, nil

		case core.NegativeReview:
			handle, err := o.source.CreateNegativeReview(ctx, out.Message, out.FileReviews)
			if err != nil {
				return nil, err
			}
			o.logger.Info("negative review created", "rounds", round, "files", len(out.FileReviews))
			return &Result{State: core.ChangesRequested, Handle: handle, Summary: out.Message, Rounds: round}, nil

		case core.AdditionalFilesRequest:
			if rc.RecursionsRemaining <= 0 {
				return nil, fmt.Errorf("%w: model requested %d more files after %d rounds",
					core.ErrRecursionExhausted, len(out.Paths), round)
			}

			files, err := o.source.RepositoryFiles(ctx)
			if err != nil {
				return nil, err
			}

			rc.RelevantFilesText = o.joinRequestedFiles(out.Paths, files)
			rc.RecursionsRemaining--
			o.logger.Info("model requested additional files",
				"round", round,
				"requested", len(out.Paths),
				"recursions_remaining", rc.RecursionsRemaining,
			)

		default:
			// Unreachable while ParseOutcome stays exhaustive over the sum type.
			return nil, fmt.Errorf("%w: unhandled outcome %T", core.ErrUnexpectedReplyShape, outcome)
		}
	}
}

// buildInitialContext assembles the first round's review context from the
// source gateway.
func (o *Orchestrator) buildInitialContext(ctx context.Context, maxRecursion int) (core.ReviewContext, error) {
	var rc core.ReviewContext

	diff, err := o.source.DiffText(ctx)
	if err != nil {
		return rc, err
	}
	prContext, err := o.source.PRContext(ctx)
	if err != nil {
		return rc, err
	}
	description, err := o.source.RepositoryDescription(ctx)
	if err != nil {
		return rc, err
	}

	return core.ReviewContext{
		DiffText:            diff,
		PRContext:           prContext,
		ProjectDescription:  description,
		RelevantFilesText:   "",
		RecursionsRemaining: maxRecursion,
	}, nil
}

// joinRequestedFiles resolves the requested paths against the repository
// listing and joins the found files into one path+content block per file,
// in request order. Missing paths are logged and dropped; they never abort
// the round.
func (o *Orchestrator) joinRequestedFiles(paths []string, files map[string]string) string {
	blocks := make([]string, 0, len(paths))
	for _, path := range paths {
		content, ok := files[path]
		if !ok {
			o.logger.Warn("requested file not found in repository listing", "path", path)
			continue
		}
		blocks = append(blocks, path+"\n"+content)
	}
	return strings.Join(blocks, "\n")
}
