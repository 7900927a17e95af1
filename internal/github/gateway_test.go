package github_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/github"
	"github.com/smart-review/smart-review/mocks"
)

const (
	testOwner = "octo"
	testRepo  = "widgets"
	testPR    = 17
)

func newGateway(t *testing.T) (*mocks.MockClient, *github.Gateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	return client, github.NewGateway(client, testOwner, testRepo, testPR, slog.Default())
}

func expectWarm(client *mocks.MockClient) {
	client.EXPECT().GetPullRequestDiff(gomock.Any(), testOwner, testRepo, testPR).
		Return("the diff", nil)
	client.EXPECT().GetChangedFiles(gomock.Any(), testOwner, testRepo, testPR).
		Return([]github.ChangedFile{
			{Filename: "main.go", Patch: "@@ -1 +1 @@"},
			{Filename: "go.mod", Patch: "@@ -3 +3 @@"},
		}, nil)
	client.EXPECT().GetRepository(gomock.Any(), testOwner, testRepo).
		Return(&gh.Repository{Description: gh.Ptr("A widget service.")}, nil)
	client.EXPECT().GetLatestCommitSHA(gomock.Any(), testOwner, testRepo, testPR).
		Return("abc123", nil)
	client.EXPECT().GetRepositoryContents(gomock.Any(), testOwner, testRepo, "").
		Return(map[string]string{"main.go": "package main"}, nil)
}

func TestGateway_Warm_MemoizesFetches(t *testing.T) {
	client, gateway := newGateway(t)
	// Each remote fetch is expected exactly once; repeated accessor calls
	// must be served from the memoized state.
	expectWarm(client)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		diff, err := gateway.DiffText(ctx)
		require.NoError(t, err)
		assert.Equal(t, "the diff", diff)
	}

	prContext, err := gateway.PRContext(ctx)
	require.NoError(t, err)
	assert.Contains(t, prContext, "## main.go")
	assert.Contains(t, prContext, "@@ -1 +1 @@")
	assert.Contains(t, prContext, "## go.mod")

	desc, err := gateway.RepositoryDescription(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A widget service.", desc)

	sha, err := gateway.HeadSHA(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)

	files, err := gateway.RepositoryFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"main.go": "package main"}, files)
}

func TestGateway_Warm_FailurePropagatesToAllAccessors(t *testing.T) {
	client, gateway := newGateway(t)

	client.EXPECT().GetPullRequestDiff(gomock.Any(), testOwner, testRepo, testPR).
		Return("", &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}})
	client.EXPECT().GetChangedFiles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).AnyTimes()
	client.EXPECT().GetRepository(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&gh.Repository{}, nil).AnyTimes()
	client.EXPECT().GetLatestCommitSHA(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil).AnyTimes()
	client.EXPECT().GetRepositoryContents(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).AnyTimes()

	ctx := context.Background()
	_, err := gateway.DiffText(ctx)
	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.GatewayNotFound, gwErr.Kind)

	// The failure is memoized too; no refetch on later accessors.
	_, err = gateway.RepositoryFiles(ctx)
	assert.ErrorAs(t, err, &gwErr)
}

func TestGateway_CreatePositiveReview(t *testing.T) {
	client, gateway := newGateway(t)

	client.EXPECT().
		CreateReview(gomock.Any(), testOwner, testRepo, testPR, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review *gh.PullRequestReviewRequest) (*gh.PullRequestReview, error) {
			assert.Equal(t, "APPROVE", review.GetEvent())
			assert.Contains(t, review.GetBody(), "## Smart Review")
			assert.Contains(t, review.GetBody(), "Nice work.")
			return &gh.PullRequestReview{
				ID:      gh.Ptr(int64(42)),
				HTMLURL: gh.Ptr("https://github.com/octo/widgets/pull/17#pullrequestreview-42"),
			}, nil
		})

	handle, err := gateway.CreatePositiveReview(context.Background(), "Nice work.")
	require.NoError(t, err)
	assert.Equal(t, int64(42), handle.ID)
	assert.Equal(t, core.Accepted, handle.State)
	assert.NotEmpty(t, handle.URL)
}

func TestGateway_CreateNegativeReview(t *testing.T) {
	client, gateway := newGateway(t)
	expectWarm(client)

	fileReviews := []core.FileReview{
		{
			FilePath: "main.go",
			LineReviews: []core.LineReview{
				{LineNumber: 10, Message: "first"},
				{LineNumber: 20, Message: "second"},
			},
		},
		{
			FilePath:    "go.mod",
			LineReviews: []core.LineReview{{LineNumber: 3, Message: "third"}},
		},
	}

	var posted []*gh.PullRequestComment
	commentCall := client.EXPECT().
		CreateReviewComment(gomock.Any(), testOwner, testRepo, testPR, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, comment *gh.PullRequestComment) error {
			posted = append(posted, comment)
			return nil
		}).Times(3)

	client.EXPECT().
		CreateReview(gomock.Any(), testOwner, testRepo, testPR, gomock.Any()).
		After(commentCall).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, review *gh.PullRequestReviewRequest) (*gh.PullRequestReview, error) {
			assert.Equal(t, "REQUEST_CHANGES", review.GetEvent())
			assert.Contains(t, review.GetBody(), "Needs work.")
			return &gh.PullRequestReview{ID: gh.Ptr(int64(99))}, nil
		})

	handle, err := gateway.CreateNegativeReview(context.Background(), "Needs work.", fileReviews)
	require.NoError(t, err)
	assert.Equal(t, core.ChangesRequested, handle.State)

	// Comments go out in document order, anchored to the head commit.
	require.Len(t, posted, 3)
	assert.Equal(t, "main.go", posted[0].GetPath())
	assert.Equal(t, 10, posted[0].GetLine())
	assert.Equal(t, 20, posted[1].GetLine())
	assert.Equal(t, "go.mod", posted[2].GetPath())
	for _, c := range posted {
		assert.Equal(t, "abc123", c.GetCommitID())
		assert.Equal(t, "RIGHT", c.GetSide())
		assert.Contains(t, c.GetBody(), "## Smart Review")
	}
}

func TestGateway_CreateNegativeReview_CommentFailureAborts(t *testing.T) {
	client, gateway := newGateway(t)
	expectWarm(client)

	client.EXPECT().
		CreateReviewComment(gomock.Any(), testOwner, testRepo, testPR, gomock.Any()).
		Return(&gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusForbidden}})

	_, err := gateway.CreateNegativeReview(context.Background(), "m", []core.FileReview{
		{FilePath: "main.go", LineReviews: []core.LineReview{{LineNumber: 1, Message: "x"}}},
	})

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, core.GatewayUnauthorized, gwErr.Kind)
}

func TestGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind core.GatewayErrorKind
	}{
		{
			name:     "Not found",
			err:      &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}},
			wantKind: core.GatewayNotFound,
		},
		{
			name:     "Unauthorized",
			err:      &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusUnauthorized}},
			wantKind: core.GatewayUnauthorized,
		},
		{
			name:     "Forbidden",
			err:      &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusForbidden}},
			wantKind: core.GatewayUnauthorized,
		},
		{
			name:     "Too many requests",
			err:      &gh.ErrorResponse{Response: &http.Response{StatusCode: http.StatusTooManyRequests}},
			wantKind: core.GatewayRateLimited,
		},
		{
			name:     "Rate limit error",
			err: &gh.RateLimitError{Response: &http.Response{
				StatusCode: http.StatusForbidden,
				Request:    &http.Request{Method: http.MethodGet, URL: &url.URL{}},
			}},
			wantKind: core.GatewayRateLimited,
		},
		{
			name:     "Plain transport error",
			err:      errors.New("connection reset"),
			wantKind: core.GatewayTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, gateway := newGateway(t)
			client.EXPECT().
				CreateReview(gomock.Any(), testOwner, testRepo, testPR, gomock.Any()).
				Return(nil, tt.err)

			_, err := gateway.CreatePositiveReview(context.Background(), "m")
			var gwErr *core.GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.wantKind, gwErr.Kind)
		})
	}
}
