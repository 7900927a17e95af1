package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/smart-review/smart-review/internal/config"
)

// CreateInstallationClient creates a GitHub client authenticated as a
// specific App installation. It returns the client together with the raw
// installation token, which callers need for authenticated git clones.
func CreateInstallationClient(ctx context.Context, cfg config.GitHubConfig, installationID int64, logger *slog.Logger) (Client, string, error) {
	logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read private key from %s: %w", cfg.PrivateKeyPath, err)
	}

	// The apps transport talks to the GitHub App API to mint installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, privateKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, "", fmt.Errorf("received an empty installation token")
	}
	logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	installationClient := github.NewClient(tc)

	return NewClient(installationClient, logger), token.GetToken(), nil
}
