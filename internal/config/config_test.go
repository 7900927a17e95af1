package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smart-review/smart-review/internal/core"
)

func f64(v float64) *float64 { return &v }

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LLMConfig
		wantErr bool
	}{
		{
			name:    "Valid openai config",
			config:  LLMConfig{Provider: "openai", OpenAIKey: "sk-test"},
			wantErr: false,
		},
		{
			name:    "Valid gemini config",
			config:  LLMConfig{Provider: "gemini", GeminiAPIKey: "g-test"},
			wantErr: false,
		},
		{
			name:    "Ollama needs no credential",
			config:  LLMConfig{Provider: "ollama"},
			wantErr: false,
		},
		{
			name:    "Competing credentials",
			config:  LLMConfig{Provider: "openai", OpenAIKey: "sk-test", GeminiAPIKey: "g-test"},
			wantErr: true,
		},
		{
			name:    "Openai without key",
			config:  LLMConfig{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "Gemini without key",
			config:  LLMConfig{Provider: "gemini"},
			wantErr: true,
		},
		{
			name:    "Unknown provider",
			config:  LLMConfig{Provider: "bedrock"},
			wantErr: true,
		},
		{
			name: "Temperature out of range",
			config: LLMConfig{
				Provider:  "openai",
				OpenAIKey: "sk-test",
				Sampling:  SamplingConfig{Temperature: f64(1.5)},
			},
			wantErr: true,
		},
		{
			name: "Negative top-p",
			config: LLMConfig{
				Provider:  "openai",
				OpenAIKey: "sk-test",
				Sampling:  SamplingConfig{TopP: f64(-0.1)},
			},
			wantErr: true,
		},
		{
			name: "Negative max tokens",
			config: LLMConfig{
				Provider:  "openai",
				OpenAIKey: "sk-test",
				Sampling:  SamplingConfig{MaxTokens: -1},
			},
			wantErr: true,
		},
		{
			name: "Sampling in range",
			config: LLMConfig{
				Provider:  "openai",
				OpenAIKey: "sk-test",
				Sampling: SamplingConfig{
					MaxTokens:        2048,
					Temperature:      f64(0.2),
					TopP:             f64(1.0),
					FrequencyPenalty: f64(0.0),
					PresencePenalty:  f64(0.5),
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("LLMConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *core.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("LLMConfig.Validate() error type = %T, want *core.ConfigurationError", err)
				}
			}
		})
	}
}

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := LoadRepoConfig(dir)
		if !errors.Is(err, ErrRepoConfigNotFound) {
			t.Fatalf("LoadRepoConfig() error = %v, want ErrRepoConfigNotFound", err)
		}
		if cfg == nil || cfg.MaxFileBytes != core.DefaultMaxFileBytes {
			t.Errorf("LoadRepoConfig() defaults not applied: %+v", cfg)
		}
	})

	t.Run("valid yaml overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "prompt_template: |\n  custom {{.Diff}}\nexclude_dirs:\n  - vendor\nexclude_exts:\n  - .lock\nmax_file_bytes: 4096\n"
		if err := os.WriteFile(filepath.Join(dir, ".smart-review.yml"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadRepoConfig(dir)
		if err != nil {
			t.Fatalf("LoadRepoConfig() error = %v", err)
		}
		if cfg.PromptTemplate == "" {
			t.Error("PromptTemplate not loaded")
		}
		if len(cfg.ExcludeDirs) != 1 || cfg.ExcludeDirs[0] != "vendor" {
			t.Errorf("ExcludeDirs = %v", cfg.ExcludeDirs)
		}
		if cfg.MaxFileBytes != 4096 {
			t.Errorf("MaxFileBytes = %d, want 4096", cfg.MaxFileBytes)
		}
	})

	t.Run("broken yaml surfaces parsing error", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".smart-review.yml"), []byte(":\tnot yaml"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadRepoConfig(dir); !errors.Is(err, ErrRepoConfigParsing) {
			t.Errorf("LoadRepoConfig() error = %v, want ErrRepoConfigParsing", err)
		}
	})
}
