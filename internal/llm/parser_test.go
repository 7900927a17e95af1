package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-review/smart-review/internal/core"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestParseOutcome_Positive(t *testing.T) {
	outcome, err := ParseOutcome(decode(t, `{
		"review_type": "positive_review",
		"message": "Looks good, ship it."
	}`))
	require.NoError(t, err)

	positive, ok := outcome.(core.PositiveReview)
	require.True(t, ok, "expected PositiveReview, got %T", outcome)
	assert.Equal(t, "Looks good, ship it.", positive.Message)
}

func TestParseOutcome_Negative(t *testing.T) {
	outcome, err := ParseOutcome(decode(t, `{
		"review_type": "negative_review",
		"message": "Several issues found.",
		"reviews": [
			{
				"file": "internal/auth/token.go",
				"comments": [
					{"line": 42, "message": "token is never invalidated"},
					{"line": 7, "message": "unused import"}
				]
			},
			{
				"file": "cmd/main.go",
				"comments": [
					{"line": 3, "message": "missing error check"}
				]
			}
		]
	}`))
	require.NoError(t, err)

	negative, ok := outcome.(core.NegativeReview)
	require.True(t, ok, "expected NegativeReview, got %T", outcome)
	assert.Equal(t, "Several issues found.", negative.Message)
	require.Len(t, negative.FileReviews, 2)

	// File and comment order must survive parsing untouched.
	assert.Equal(t, "internal/auth/token.go", negative.FileReviews[0].FilePath)
	require.Len(t, negative.FileReviews[0].LineReviews, 2)
	assert.Equal(t, 42, negative.FileReviews[0].LineReviews[0].LineNumber)
	assert.Equal(t, 7, negative.FileReviews[0].LineReviews[1].LineNumber)
	assert.Equal(t, "cmd/main.go", negative.FileReviews[1].FilePath)
}

func TestParseOutcome_AdditionalFiles(t *testing.T) {
	outcome, err := ParseOutcome(decode(t, `{
		"review_type": "additional_files",
		"message": "Need more context.",
		"additional_files": ["internal/auth/token.go", "go.mod"]
	}`))
	require.NoError(t, err)

	request, ok := outcome.(core.AdditionalFilesRequest)
	require.True(t, ok, "expected AdditionalFilesRequest, got %T", outcome)
	assert.Equal(t, []string{"internal/auth/token.go", "go.mod"}, request.Paths)
}

func TestParseOutcome_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Missing review_type", raw: `{"message": "hi"}`},
		{name: "Non-string review_type", raw: `{"review_type": 3}`},
		{name: "Unknown review_type", raw: `{"review_type": "sarcastic_review", "message": "hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOutcome(decode(t, tt.raw))
			assert.ErrorIs(t, err, core.ErrUnexpectedReplyShape)
		})
	}
}

func TestParseOutcome_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "Positive without message",
			raw:  `{"review_type": "positive_review"}`,
		},
		{
			name: "Negative without reviews",
			raw:  `{"review_type": "negative_review", "message": "bad"}`,
		},
		{
			name: "Negative with empty reviews",
			raw:  `{"review_type": "negative_review", "message": "bad", "reviews": []}`,
		},
		{
			name: "Negative file without comments",
			raw:  `{"review_type": "negative_review", "message": "bad", "reviews": [{"file": "a.go", "comments": []}]}`,
		},
		{
			name: "Negative comment without line",
			raw:  `{"review_type": "negative_review", "message": "bad", "reviews": [{"file": "a.go", "comments": [{"message": "x"}]}]}`,
		},
		{
			name: "Negative comment with fractional line",
			raw:  `{"review_type": "negative_review", "message": "bad", "reviews": [{"file": "a.go", "comments": [{"line": 1.5, "message": "x"}]}]}`,
		},
		{
			name: "Negative comment with zero line",
			raw:  `{"review_type": "negative_review", "message": "bad", "reviews": [{"file": "a.go", "comments": [{"line": 0, "message": "x"}]}]}`,
		},
		{
			name: "Additional files without paths",
			raw:  `{"review_type": "additional_files", "message": "more"}`,
		},
		{
			name: "Additional files with empty list",
			raw:  `{"review_type": "additional_files", "message": "more", "additional_files": []}`,
		},
		{
			name: "Additional files with non-string entry",
			raw:  `{"review_type": "additional_files", "message": "more", "additional_files": [7]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOutcome(decode(t, tt.raw))
			assert.ErrorIs(t, err, core.ErrMalformedReply)
		})
	}
}

func TestDecodeJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "Plain object", input: `{"review_type": "positive_review"}`},
		{name: "Fenced object", input: "```json\n{\"review_type\": \"positive_review\"}\n```"},
		{name: "Fence without language", input: "```\n{\"a\": 1}\n```"},
		{name: "Leading whitespace", input: "  \n {\"a\": 1}"},
		{name: "Not JSON", input: "the code looks fine to me", wantErr: true},
		{name: "JSON array", input: `[1, 2]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := decodeJSONObject(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, raw)
			}
		})
	}
}
