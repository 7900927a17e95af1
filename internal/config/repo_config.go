package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smart-review/smart-review/internal/core"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// LoadRepoConfig loads and parses the .smart-review.yml file from a cloned
// repository path. A missing file yields the defaults alongside
// ErrRepoConfigNotFound so callers can log the fallback.
func LoadRepoConfig(repoPath string) (*core.RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".smart-review.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultRepoConfig(), ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .smart-review.yml: %w", err)
	}

	config := core.DefaultRepoConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return config, nil
}
