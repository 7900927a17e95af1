package core

// RepoConfig represents the structure of the .smart-review.yml file a
// repository may carry to tune its own reviews.
type RepoConfig struct {
	// PromptTemplate overrides the built-in review prompt template. It is
	// parsed as a text/template with the same fields as the default.
	PromptTemplate string `yaml:"prompt_template"`

	// Exclusion of entire directories by name from the repository file
	// listing used to resolve additional-files requests.
	// Example: ["dist", "vendor", "node_modules"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files based on their extension. The leading dot is
	// optional. Example: [".md", "lock", ".log"]
	ExcludeExts []string `yaml:"exclude_exts"`

	// MaxFileBytes caps the size of a single file offered to the LLM.
	// Files above the cap are left out of the listing. Zero means the
	// built-in default.
	MaxFileBytes int64 `yaml:"max_file_bytes"`
}

// DefaultMaxFileBytes bounds file content handed to the LLM as context.
const DefaultMaxFileBytes int64 = 128 * 1024

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		ExcludeDirs:  []string{},
		ExcludeExts:  []string{},
		MaxFileBytes: DefaultMaxFileBytes,
	}
}
