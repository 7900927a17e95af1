package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Client clones pull-request head commits into temporary working copies.
type Client struct {
	logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// CloneAndCheckoutTemp clones repoURL into a fresh temporary directory and
// checks out the given commit. The returned cleanup removes the directory;
// callers must run it even when they fail partway through their own work.
func (c *Client) CloneAndCheckoutTemp(ctx context.Context, repoURL, sha, token string) (string, func(), error) {
	repoPath, err := os.MkdirTemp("", "smart-review-repo-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		if removeErr := os.RemoveAll(repoPath); removeErr != nil {
			c.logger.Error("failed to remove temp repo", "path", repoPath, "error", removeErr)
		}
	}

	c.logger.InfoContext(ctx, "cloning repository", "url", repoURL, "path", repoPath)

	opts := &git.CloneOptions{URL: repoURL}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}
	repo, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to checkout %s: %w", sha, err)
	}

	c.logger.InfoContext(ctx, "repository cloned and checked out", "sha", sha)
	return repoPath, cleanup, nil
}
