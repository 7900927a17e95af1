package gitutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-review/smart-review/internal/core"
)

// newTestRepo creates a repository with the given files committed and
// returns its path and head SHA.
func newTestRepo(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err = worktree.Add(name)
		require.NoError(t, err)
	}

	sha, err := worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, sha.String()
}

func TestTreeFileSource_Files(t *testing.T) {
	dir, sha := newTestRepo(t, map[string]string{
		"main.go":           "package main\n",
		"internal/util.go":  "package internal\n",
		"vendor/dep/dep.go": "package dep\n",
		"README.md":         "# readme\n",
		"data/blob.bin":     "\x00\x01\x02binary",
	})

	cfg := &core.RepoConfig{
		ExcludeDirs:  []string{"vendor"},
		ExcludeExts:  []string{"md"},
		MaxFileBytes: core.DefaultMaxFileBytes,
	}

	files, err := NewTreeFileSource(dir, sha, cfg).Files(context.Background())
	require.NoError(t, err)

	assert.Contains(t, files, "main.go")
	assert.Contains(t, files, "internal/util.go")
	assert.Equal(t, "package main\n", files["main.go"])
	assert.NotContains(t, files, "vendor/dep/dep.go", "excluded directory leaked")
	assert.NotContains(t, files, "README.md", "excluded extension leaked")
	assert.NotContains(t, files, "data/blob.bin", "binary file leaked")
}

func TestTreeFileSource_SizeCap(t *testing.T) {
	dir, sha := newTestRepo(t, map[string]string{
		"small.go": "ok\n",
		"big.go":   "package big\n" + strings.Repeat("// padding\n", 100),
	})

	cfg := &core.RepoConfig{MaxFileBytes: 10}
	files, err := NewTreeFileSource(dir, sha, cfg).Files(context.Background())
	require.NoError(t, err)

	assert.Contains(t, files, "small.go")
	assert.NotContains(t, files, "big.go", "files above the cap should be dropped")
}

func TestTreeFileSource_BadCommit(t *testing.T) {
	dir, _ := newTestRepo(t, map[string]string{"a.go": "package a\n"})

	_, err := NewTreeFileSource(dir, "0000000000000000000000000000000000000000", nil).Files(context.Background())
	assert.Error(t, err)
}
