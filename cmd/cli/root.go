package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	githubToken string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "smart-review",
	Short: "smart-review runs LLM-driven pull-request reviews.",
	Long: `smart-review fetches a GitHub pull request, asks an LLM to review the
diff, and posts the resulting review back to the pull request. The model may
ask for additional repository files before settling on a verdict.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub personal access token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")

	if err := viper.BindPFlag("GITHUB_TOKEN", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("SR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
