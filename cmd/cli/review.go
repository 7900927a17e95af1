package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smart-review/smart-review/internal/config"
	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/github"
	"github.com/smart-review/smart-review/internal/gitutil"
	"github.com/smart-review/smart-review/internal/llm"
	"github.com/smart-review/smart-review/internal/logger"
	"github.com/smart-review/smart-review/internal/review"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

var (
	prOwner  string
	prRepo   string
	prNumber int

	llmProvider  string
	llmModel     string
	openaiToken  string
	geminiAPIKey string
	ollamaHost   string

	maxTokens        int
	temperature      float64
	topP             float64
	topK             int
	frequencyPenalty float64
	presencePenalty  float64

	maxRecursion int
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run an LLM review for a GitHub pull request",
	Long: `Run an LLM review for a GitHub pull request.

The target pull request is given either as a URL argument or through the
--owner, --repo and --pr flags.

Examples:
  smart-review review https://github.com/owner/repo/pull/123
  smart-review review --owner owner --repo repo --pr 123 --openai-token sk-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVar(&prOwner, "owner", "", "Repository owner")
	reviewCmd.Flags().StringVar(&prRepo, "repo", "", "Repository name")
	reviewCmd.Flags().IntVar(&prNumber, "pr", 0, "Pull request number")

	reviewCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider: openai, gemini or ollama (inferred from credentials when empty)")
	reviewCmd.Flags().StringVar(&llmModel, "model", "", "Model name (provider default when empty)")
	reviewCmd.Flags().StringVar(&openaiToken, "openai-token", "", "OpenAI API key")
	reviewCmd.Flags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key")
	reviewCmd.Flags().StringVar(&ollamaHost, "ollama-host", "http://localhost:11434", "Ollama server URL")
	reviewCmd.MarkFlagsMutuallyExclusive("openai-token", "gemini-api-key")

	reviewCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum completion tokens")
	reviewCmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0.0-1.0)")
	reviewCmd.Flags().Float64Var(&topP, "top-p", 0, "Nucleus sampling probability (0.0-1.0)")
	reviewCmd.Flags().IntVar(&topK, "top-k", 0, "Top-k sampling cutoff")
	reviewCmd.Flags().Float64Var(&frequencyPenalty, "frequency-penalty", 0, "Frequency penalty (0.0-1.0)")
	reviewCmd.Flags().Float64Var(&presencePenalty, "presence-penalty", 0, "Presence penalty (0.0-1.0)")

	reviewCmd.Flags().IntVar(&maxRecursion, "max-recursion", 5, "Maximum additional-files rounds before giving up")

	rootCmd.AddCommand(reviewCmd)
}

// stepTimer tracks timing for verbose output.
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\nStep %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Printf("   done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Printf("   %s\n", d)
		}
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, repo, number, err := resolveTarget(args)
	if err != nil {
		return err
	}

	llmCfg, err := buildLLMConfig(cmd)
	if err != nil {
		return err
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return &core.ConfigurationError{Reason: "GitHub token is not set; pass --github-token or set SR_GITHUB_TOKEN"}
	}

	log := logger.New(logger.Config{Level: cliLogLevel(), Format: "text", Output: "stderr"}, os.Stderr)

	titleColor.Println("Smart Review - PR Review")
	dimColor.Printf("   Target: %s/%s#%d\n", owner, repo, number)

	timer := newStepTimer(3, verbose)
	overallStart := time.Now()

	timer.step("Connecting to LLM backend")
	llmGateway, err := llm.NewGateway(ctx, llmCfg, log)
	if err != nil {
		return err
	}
	timer.done()

	timer.step("Fetching pull request")
	ghClient := github.NewPATClient(ctx, token, log)
	source := github.NewGateway(ghClient, owner, repo, number, log)
	if err := source.Warm(ctx); err != nil {
		return fmt.Errorf("failed to fetch pull request data: %w", err)
	}
	timer.done()

	timer.step("Running review")
	prompts, err := llm.NewPromptManager()
	if err != nil {
		return err
	}
	result, err := review.New(source, llmGateway, prompts, log).Run(ctx, maxRecursion)
	if err != nil {
		return err
	}
	timer.done()

	if verbose {
		dimColor.Printf("\nTotal time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}
	printResult(result)
	return nil
}

// resolveTarget picks the pull request from the URL argument or the
// owner/repo/pr flags; exactly one of the two forms must be used.
func resolveTarget(args []string) (string, string, int, error) {
	if len(args) == 1 {
		if prOwner != "" || prRepo != "" || prNumber != 0 {
			return "", "", 0, &core.ConfigurationError{Reason: "give either a PR URL or --owner/--repo/--pr, not both"}
		}
		return gitutil.ParsePullRequestURL(args[0])
	}
	if prOwner == "" || prRepo == "" || prNumber <= 0 {
		return "", "", 0, &core.ConfigurationError{Reason: "a PR URL argument or all of --owner, --repo and --pr are required"}
	}
	return prOwner, prRepo, prNumber, nil
}

// buildLLMConfig assembles and validates the LLM configuration from flags.
// The provider is inferred from which credential was given when not set
// explicitly.
func buildLLMConfig(cmd *cobra.Command) (config.LLMConfig, error) {
	cfg := config.LLMConfig{
		Provider:     llmProvider,
		Model:        llmModel,
		OpenAIKey:    openaiToken,
		GeminiAPIKey: geminiAPIKey,
		OllamaHost:   ollamaHost,
		Sampling: config.SamplingConfig{
			MaxTokens: maxTokens,
			TopK:      topK,
		},
	}
	if cfg.Provider == "" {
		switch {
		case openaiToken != "":
			cfg.Provider = "openai"
		case geminiAPIKey != "":
			cfg.Provider = "gemini"
		default:
			cfg.Provider = "ollama"
		}
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}

	// Only flags the user actually set become sampling parameters; the
	// backend keeps its own defaults for the rest.
	if cmd.Flags().Changed("temperature") {
		cfg.Sampling.Temperature = &temperature
	}
	if cmd.Flags().Changed("top-p") {
		cfg.Sampling.TopP = &topP
	}
	if cmd.Flags().Changed("frequency-penalty") {
		cfg.Sampling.FrequencyPenalty = &frequencyPenalty
	}
	if cmd.Flags().Changed("presence-penalty") {
		cfg.Sampling.PresencePenalty = &presencePenalty
	}

	if err := cfg.Validate(); err != nil {
		return config.LLMConfig{}, err
	}
	return cfg, nil
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-1.5-flash"
	case "ollama":
		return "llama3"
	default:
		return "gpt-4o-mini"
	}
}

func cliLogLevel() string {
	if verbose {
		return "debug"
	}
	return "warn"
}

func printResult(result *review.Result) {
	fmt.Println()
	switch result.State {
	case core.Accepted:
		successColor.Println("Review outcome: APPROVED")
	case core.ChangesRequested:
		warnColor.Println("Review outcome: CHANGES REQUESTED")
	}
	dimColor.Printf("   Rounds: %d\n", result.Rounds)
	if result.Handle != nil && result.Handle.URL != "" {
		dimColor.Printf("   Review: %s\n", result.Handle.URL)
	}

	if result.Summary == "" {
		return
	}
	fmt.Println()
	out, err := renderMarkdown(result.Summary)
	if err != nil {
		fmt.Println(result.Summary)
		return
	}
	fmt.Print(out)
}

// renderMarkdown pretty-prints the model's summary for the terminal.
func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
