// Package config loads and validates the application's configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	Logging  logger.Config
	GitHub   GitHubConfig
	LLM      LLMConfig
	Review   ReviewConfig
	Database DBConfig
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Port string
}

// GitHubConfig carries source-control credentials. Token authenticates the
// CLI; the App fields authenticate the webhook server.
type GitHubConfig struct {
	Token          string
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// LLMConfig selects and configures the LLM backend.
type LLMConfig struct {
	Provider      string
	Model         string
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiAPIKey  string
	OllamaHost    string
	Sampling      SamplingConfig
}

// SamplingConfig mirrors the optional generation parameters exposed on the
// CLI. Nil pointers and a zero MaxTokens/TopK mean "backend default".
type SamplingConfig struct {
	MaxTokens        int
	Temperature      *float64
	TopP             *float64
	TopK             int
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// ReviewConfig tunes the review loop itself.
type ReviewConfig struct {
	// MaxRecursion is the additional-files recursion ceiling.
	MaxRecursion int
	// MaxWorkers bounds concurrent review jobs in server mode.
	MaxWorkers int
}

// DBConfig configures the Postgres connection for review history.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig reads server configuration from environment variables and an
// optional .env file, sets defaults, and validates required fields. Viper
// handles loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("MAX_RECURSION", 5)
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/smart-review-app.private-key.pem")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USERNAME", "postgres")
	viper.SetDefault("DB_DATABASE", "smart_review")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A missing .env is fine; a broken one is not.
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		GitHub: GitHubConfig{
			Token:          viper.GetString("GITHUB_TOKEN"),
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		LLM: LLMConfig{
			Provider:      viper.GetString("LLM_PROVIDER"),
			Model:         viper.GetString("LLM_MODEL"),
			OpenAIKey:     viper.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL: viper.GetString("OPENAI_BASE_URL"),
			GeminiAPIKey:  viper.GetString("GEMINI_API_KEY"),
			OllamaHost:    viper.GetString("OLLAMA_HOST"),
		},
		Review: ReviewConfig{
			MaxRecursion: viper.GetInt("MAX_RECURSION"),
			MaxWorkers:   viper.GetInt("MAX_WORKERS"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USERNAME"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_DATABASE"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
	}

	if err := cfg.validateServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateServer checks the fields the webhook server cannot run without.
func (c *Config) validateServer() error {
	if c.GitHub.AppID == 0 {
		return &core.ConfigurationError{Reason: "GITHUB_APP_ID must be set"}
	}
	if c.GitHub.WebhookSecret == "" {
		return &core.ConfigurationError{Reason: "GITHUB_WEBHOOK_SECRET must be set"}
	}
	if c.Review.MaxRecursion < 0 {
		return &core.ConfigurationError{Reason: fmt.Sprintf("MAX_RECURSION must be >= 0, got %d", c.Review.MaxRecursion)}
	}
	return c.LLM.Validate()
}

// Validate checks the LLM credential configuration: exactly one credential
// must match the selected provider, and credentials for competing providers
// must not be mixed.
func (c *LLMConfig) Validate() error {
	if c.OpenAIKey != "" && c.GeminiAPIKey != "" {
		return &core.ConfigurationError{Reason: "only one of the OpenAI key or the Gemini API key may be provided"}
	}

	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" {
			return &core.ConfigurationError{Reason: "openai provider requires an OpenAI key"}
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return &core.ConfigurationError{Reason: "gemini provider requires GEMINI_API_KEY"}
		}
	case "ollama":
		// Local provider, no credential.
	default:
		return &core.ConfigurationError{Reason: fmt.Sprintf("unsupported LLM provider: %s", c.Provider)}
	}

	if err := validateUnitInterval("temperature", c.Sampling.Temperature); err != nil {
		return err
	}
	if err := validateUnitInterval("top-p", c.Sampling.TopP); err != nil {
		return err
	}
	if err := validateUnitInterval("frequency-penalty", c.Sampling.FrequencyPenalty); err != nil {
		return err
	}
	if err := validateUnitInterval("presence-penalty", c.Sampling.PresencePenalty); err != nil {
		return err
	}
	if c.Sampling.MaxTokens < 0 {
		return &core.ConfigurationError{Reason: "max-tokens must be >= 0"}
	}
	if c.Sampling.TopK < 0 {
		return &core.ConfigurationError{Reason: "top-k must be >= 0"}
	}
	return nil
}

func validateUnitInterval(name string, v *float64) error {
	if v != nil && (*v < 0.0 || *v > 1.0) {
		return &core.ConfigurationError{Reason: fmt.Sprintf("%s must be between 0.0 and 1.0, got %v", name, *v)}
	}
	return nil
}
