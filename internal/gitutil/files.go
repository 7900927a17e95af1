package gitutil

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/smart-review/smart-review/internal/core"
)

// TreeFileSource reads repository file content out of a checked-out clone's
// commit tree, applying the repository's own exclusion rules. It satisfies
// the file-source capability the review gateway resolves additional-files
// requests against.
type TreeFileSource struct {
	repoPath string
	sha      string
	cfg      *core.RepoConfig
}

// NewTreeFileSource creates a file source over the clone at repoPath,
// pinned to the given commit. A nil cfg means default exclusion rules.
func NewTreeFileSource(repoPath, sha string, cfg *core.RepoConfig) *TreeFileSource {
	if cfg == nil {
		cfg = core.DefaultRepoConfig()
	}
	return &TreeFileSource{repoPath: repoPath, sha: sha, cfg: cfg}
}

// Files walks the commit tree and returns path -> content for every file
// that passes the exclusion rules. Binary files and files above the size
// cap are left out.
func (s *TreeFileSource) Files(ctx context.Context) (map[string]string, error) {
	repo, err := git.PlainOpen(s.repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", s.repoPath, err)
	}
	commit, err := repo.CommitObject(plumbing.NewHash(s.sha))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commit %s: %w", s.sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree for %s: %w", s.sha, err)
	}

	maxBytes := s.cfg.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = core.DefaultMaxFileBytes
	}

	files := make(map[string]string)
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.excluded(f.Name) || f.Size > maxBytes {
			return nil
		}
		if bin, err := f.IsBinary(); err != nil || bin {
			return nil
		}
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		files[f.Name] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree for %s: %w", s.sha, err)
	}
	return files, nil
}

func (s *TreeFileSource) excluded(name string) bool {
	for _, dir := range s.cfg.ExcludeDirs {
		if dir == "" {
			continue
		}
		if name == dir || strings.HasPrefix(name, dir+"/") || strings.Contains(name, "/"+dir+"/") {
			return true
		}
	}
	ext := path.Ext(name)
	for _, e := range s.cfg.ExcludeExts {
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
