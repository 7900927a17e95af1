package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/go-github/v73/github"
	"golang.org/x/sync/errgroup"

	"github.com/smart-review/smart-review/internal/core"
)

const reviewBodyHeader = "## Smart Review\n\n"

// FileSource supplies the repository's path to content mapping used to
// resolve additional-files requests. The default source is the contents
// API; server mode swaps in a clone-based source that sees the whole tree.
type FileSource interface {
	Files(ctx context.Context) (map[string]string, error)
}

// Gateway implements the source-control capability for one pull request.
// Every remote fetch is performed once, eagerly and concurrently on first
// access, and memoized for the rest of the review; the orchestrator sees
// plain synchronous accessors.
type Gateway struct {
	client Client
	owner  string
	repo   string
	number int
	files  FileSource
	logger *slog.Logger

	warmOnce sync.Once
	warmErr  error

	diff        string
	prContext   string
	description string
	headSHA     string
	repoFiles   map[string]string
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithFileSource replaces the default contents-API file source.
func WithFileSource(fs FileSource) GatewayOption {
	return func(g *Gateway) {
		g.files = fs
	}
}

// NewGateway creates a review gateway for a single pull request.
func NewGateway(client Client, owner, repo string, number int, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client: client,
		owner:  owner,
		repo:   repo,
		number: number,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.files == nil {
		g.files = &contentsFileSource{client: client, owner: owner, repo: repo}
	}
	return g
}

// Warm eagerly fetches everything the review loop will read: diff, PR
// context, repository description, latest commit SHA and the repository
// file listing. Fetches run concurrently; the first failure wins. Warm is
// idempotent and implicitly invoked by every accessor.
func (g *Gateway) Warm(ctx context.Context) error {
	g.warmOnce.Do(func() {
		g.warmErr = g.fetchAll(ctx)
	})
	return g.warmErr
}

func (g *Gateway) fetchAll(ctx context.Context) error {
	grp, grpCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		diff, err := g.client.GetPullRequestDiff(grpCtx, g.owner, g.repo, g.number)
		if err != nil {
			return wrapGatewayErr("get diff", err)
		}
		g.diff = diff
		return nil
	})

	grp.Go(func() error {
		files, err := g.client.GetChangedFiles(grpCtx, g.owner, g.repo, g.number)
		if err != nil {
			return wrapGatewayErr("get changed files", err)
		}
		g.prContext = joinChangedFiles(files)
		return nil
	})

	grp.Go(func() error {
		repository, err := g.client.GetRepository(grpCtx, g.owner, g.repo)
		if err != nil {
			return wrapGatewayErr("get repository", err)
		}
		g.description = repository.GetDescription()
		return nil
	})

	grp.Go(func() error {
		sha, err := g.client.GetLatestCommitSHA(grpCtx, g.owner, g.repo, g.number)
		if err != nil {
			return wrapGatewayErr("get latest commit", err)
		}
		g.headSHA = sha
		return nil
	})

	grp.Go(func() error {
		files, err := g.files.Files(grpCtx)
		if err != nil {
			return wrapGatewayErr("get repository files", err)
		}
		g.repoFiles = files
		return nil
	})

	return grp.Wait()
}

// DiffText returns the pull request's unified diff.
func (g *Gateway) DiffText(ctx context.Context) (string, error) {
	if err := g.Warm(ctx); err != nil {
		return "", err
	}
	return g.diff, nil
}

// PRContext returns the concatenated per-file patches of the pull request.
func (g *Gateway) PRContext(ctx context.Context) (string, error) {
	if err := g.Warm(ctx); err != nil {
		return "", err
	}
	return g.prContext, nil
}

// RepositoryDescription returns the repository's description.
func (g *Gateway) RepositoryDescription(ctx context.Context) (string, error) {
	if err := g.Warm(ctx); err != nil {
		return "", err
	}
	return g.description, nil
}

// RepositoryFiles returns the repository file listing fixed at review start.
func (g *Gateway) RepositoryFiles(ctx context.Context) (map[string]string, error) {
	if err := g.Warm(ctx); err != nil {
		return nil, err
	}
	return g.repoFiles, nil
}

// HeadSHA returns the SHA of the pull request's latest commit.
func (g *Gateway) HeadSHA(ctx context.Context) (string, error) {
	if err := g.Warm(ctx); err != nil {
		return "", err
	}
	return g.headSHA, nil
}

// CreatePositiveReview approves the pull request with a summary message.
func (g *Gateway) CreatePositiveReview(ctx context.Context, message string) (*core.ReviewHandle, error) {
	review, err := g.client.CreateReview(ctx, g.owner, g.repo, g.number, &github.PullRequestReviewRequest{
		Body:  github.Ptr(reviewBodyHeader + message),
		Event: github.Ptr("APPROVE"),
	})
	if err != nil {
		return nil, wrapGatewayErr("create positive review", err)
	}
	return &core.ReviewHandle{
		ID:    review.GetID(),
		URL:   review.GetHTMLURL(),
		State: core.Accepted,
	}, nil
}

// CreateNegativeReview posts one line comment per line review, in document
// order and anchored against the latest commit, then submits one
// REQUEST_CHANGES summary review.
func (g *Gateway) CreateNegativeReview(ctx context.Context, message string, fileReviews []core.FileReview) (*core.ReviewHandle, error) {
	if err := g.Warm(ctx); err != nil {
		return nil, err
	}

	for _, fr := range fileReviews {
		for _, lr := range fr.LineReviews {
			comment := &github.PullRequestComment{
				Body:     github.Ptr(reviewBodyHeader + lr.Message),
				Path:     github.Ptr(fr.FilePath),
				Line:     github.Ptr(lr.LineNumber),
				Side:     github.Ptr("RIGHT"),
				CommitID: github.Ptr(g.headSHA),
			}
			if err := g.client.CreateReviewComment(ctx, g.owner, g.repo, g.number, comment); err != nil {
				return nil, wrapGatewayErr("create line comment", err)
			}
		}
	}

	review, err := g.client.CreateReview(ctx, g.owner, g.repo, g.number, &github.PullRequestReviewRequest{
		Body:  github.Ptr(reviewBodyHeader + message),
		Event: github.Ptr("REQUEST_CHANGES"),
	})
	if err != nil {
		return nil, wrapGatewayErr("create negative review", err)
	}
	return &core.ReviewHandle{
		ID:    review.GetID(),
		URL:   review.GetHTMLURL(),
		State: core.ChangesRequested,
	}, nil
}

// contentsFileSource lists repository files through the contents API at the
// default branch.
type contentsFileSource struct {
	client Client
	owner  string
	repo   string
}

func (s *contentsFileSource) Files(ctx context.Context) (map[string]string, error) {
	return s.client.GetRepositoryContents(ctx, s.owner, s.repo, "")
}

// joinChangedFiles renders the changed files into the PR context string:
// one markdown section per file with its patch.
func joinChangedFiles(files []ChangedFile) string {
	var b []byte
	for _, f := range files {
		b = append(b, "## "...)
		b = append(b, f.Filename...)
		b = append(b, "\n\n"...)
		b = append(b, f.Patch...)
		b = append(b, "\n\n"...)
	}
	return string(b)
}

// wrapGatewayErr classifies a GitHub API failure into the gateway error
// taxonomy.
func wrapGatewayErr(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := core.GatewayTransport

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		kind = core.GatewayRateLimited
	case errors.As(err, &respErr):
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			kind = core.GatewayNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = core.GatewayUnauthorized
		case http.StatusTooManyRequests:
			kind = core.GatewayRateLimited
		}
	}

	return &core.GatewayError{Kind: kind, Op: op, Err: err}
}
