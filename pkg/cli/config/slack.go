package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
)

type Slack struct {
	clientID      string
	clientSecret  string
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("YOURTYME_SLACK_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack OAuth client secret",
			Category:    "Slack",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("YOURTYME_SLACK_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for channel/member lookup and App Home rendering)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("YOURTYME_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("YOURTYME_SLACK_SIGNING_SECRET"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// BotToken returns the Slack bot token
func (x *Slack) BotToken() string {
	return x.botToken
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// IsOAuthConfigured checks if the OAuth install flow can be enabled
func (x *Slack) IsOAuthConfigured() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// IsWebhookConfigured checks if the Slack webhook surface can be enabled
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// ConfigureAuth creates an AuthUseCase when OAuth is configured. The base URL
// is required to build the callback URL.
func (x *Slack) ConfigureAuth(repo interfaces.Repository, baseURL string) (*usecase.AuthUseCase, error) {
	if !x.IsOAuthConfigured() {
		return nil, nil
	}
	if baseURL == "" {
		return nil, goerr.New("base-url is required when Slack OAuth is configured")
	}

	callbackURL := baseURL + "/api/auth/callback"
	return usecase.NewAuthUseCase(repo, x.clientID, x.clientSecret, callbackURL), nil
}
