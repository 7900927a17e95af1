// Package github provides the source-control gateway: a narrow client over
// the GitHub API plus the memoized review gateway the orchestrator consumes.
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// ChangedFile holds the filename and patch data for a single file included
// in a pull request.
type ChangedFile struct {
	Filename string
	Patch    string
}

// Client defines the set of GitHub API operations the review flow needs.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	GetRepositoryContents(ctx context.Context, owner, repo, ref string) (map[string]string, error)
	GetLatestCommitSHA(ctx context.Context, owner, repo string, number int) (string, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, comment *github.PullRequestComment) error
	CreateReview(ctx context.Context, owner, repo string, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, error)
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a client authenticated with a Personal Access Token.
// This is the CLI path, where no App installation is available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	return &gitHubClient{client: client, logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetPullRequestDiff retrieves the unified diff of a pull request.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Error("failed to get pull request diff", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", err
	}
	return diff, nil
}

// GetChangedFiles retrieves the list of files modified in a pull request.
// It handles pagination automatically; GitHub returns at most 100 files per
// page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	var allFiles []ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, file := range files {
			allFiles = append(allFiles, ChangedFile{
				Filename: file.GetFilename(),
				Patch:    file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// GetRepository retrieves repository metadata, including its description.
func (g *gitHubClient) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	repository, _, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		g.logger.Error("failed to get repository", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}
	return repository, nil
}

// GetRepositoryContents lists the repository's top-level files at the given
// ref (empty means the default branch) and fetches each file's content.
// Subdirectories are skipped; this mirrors the contents API listing the
// review offers the LLM for additional-files resolution.
func (g *gitHubClient) GetRepositoryContents(ctx context.Context, owner, repo, ref string) (map[string]string, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	fileContent, dirContents, _, err := g.client.Repositories.GetContents(ctx, owner, repo, "", opts)
	if err != nil {
		g.logger.Error("failed to list repository contents", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}

	contents := make(map[string]string)

	if fileContent != nil {
		content, err := fileContent.GetContent()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content of %s: %w", fileContent.GetPath(), err)
		}
		contents[fileContent.GetPath()] = content
		return contents, nil
	}

	for _, entry := range dirContents {
		if entry.GetType() != "file" {
			continue
		}
		// Directory listings carry no content; each file needs its own fetch.
		file, _, _, err := g.client.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), opts)
		if err != nil {
			g.logger.Error("failed to fetch repository file", "path", entry.GetPath(), "error", err)
			return nil, err
		}
		if file == nil {
			continue
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content of %s: %w", entry.GetPath(), err)
		}
		contents[entry.GetPath()] = content
	}

	return contents, nil
}

// GetLatestCommitSHA returns the SHA of the most recent commit on a pull
// request. Line comments are anchored against this commit.
func (g *gitHubClient) GetLatestCommitSHA(ctx context.Context, owner, repo string, number int) (string, error) {
	var latest string
	opts := &github.ListOptions{PerPage: 100}

	for {
		commits, resp, err := g.client.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list commits for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return "", err
		}
		if len(commits) > 0 {
			latest = commits[len(commits)-1].GetSHA()
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if latest == "" {
		return "", fmt.Errorf("pull request %s/%s#%d has no commits", owner, repo, number)
	}
	return latest, nil
}

// CreateReviewComment posts a single line comment on a pull request.
func (g *gitHubClient) CreateReviewComment(ctx context.Context, owner, repo string, number int, comment *github.PullRequestComment) error {
	_, _, err := g.client.PullRequests.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create review comment", "owner", owner, "repo", repo, "pr", number, "path", comment.GetPath(), "error", err)
	}
	return err
}

// CreateReview submits a pull request review event (APPROVE or
// REQUEST_CHANGES).
func (g *gitHubClient) CreateReview(ctx context.Context, owner, repo string, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, error) {
	created, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, review)
	if err != nil {
		g.logger.Error("failed to create pull request review", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return created, nil
}

// CreateCheckRun creates a new check run.
func (g *gitHubClient) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.CreateCheckRun(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to create check run", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}
	return checkRun, nil
}

// UpdateCheckRun updates an existing check run.
func (g *gitHubClient) UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.UpdateCheckRun(ctx, owner, repo, checkRunID, opts)
	if err != nil {
		g.logger.Error("failed to update check run", "owner", owner, "repo", repo, "checkRunID", checkRunID, "error", err)
	}
	return checkRun, err
}
