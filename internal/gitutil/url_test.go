package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantID    int
		wantErr   bool
	}{
		{
			name:      "Valid HTTPS URL",
			url:       "https://github.com/octocat/hello-world/pull/42",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
			wantID:    42,
			wantErr:   false,
		},
		{
			name:      "Valid URL without scheme",
			url:       "github.com/octocat/hello-world/pull/7",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
			wantID:    7,
			wantErr:   false,
		},
		{
			name:      "URL with trailing slash",
			url:       "https://github.com/octocat/hello-world/pull/99/",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
			wantID:    99,
			wantErr:   false,
		},
		{
			name:    "Non-numeric PR number",
			url:     "https://github.com/octocat/hello-world/pull/abc",
			wantErr: true,
		},
		{
			name:    "Issue URL instead of pull",
			url:     "https://github.com/octocat/hello-world/issues/42",
			wantErr: true,
		},
		{
			name:    "Extra path segment",
			url:     "https://github.com/octocat/hello-world/pull/42/files",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, id, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantOwner, owner)
				assert.Equal(t, tt.wantRepo, repo)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}
