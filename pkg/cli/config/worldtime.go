package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
)

// Worldtime holds CLI flags for the worldtime provider
type Worldtime struct {
	apiKey  string
	baseURL string
}

func (x *Worldtime) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "worldtime-api-key",
			Usage:       "API Ninjas key for the worldtime endpoint",
			Category:    "Worldtime",
			Destination: &x.apiKey,
			Sources:     cli.EnvVars("YOURTYME_WORLDTIME_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "worldtime-base-url",
			Usage:       "Override the worldtime API base URL",
			Category:    "Worldtime",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("YOURTYME_WORLDTIME_BASE_URL"),
		},
	}
}

func (x Worldtime) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("base-url", x.baseURL),
	)
}

// IsConfigured checks if the worldtime provider can be enabled
func (x *Worldtime) IsConfigured() bool {
	return x.apiKey != ""
}

// Configure creates a worldtime client, or nil when no API key is set
func (x *Worldtime) Configure() (worldtime.Client, error) {
	if x.apiKey == "" {
		return nil, nil
	}

	var opts []worldtime.Option
	if x.baseURL != "" {
		opts = append(opts, worldtime.WithBaseURL(x.baseURL))
	}
	return worldtime.New(x.apiKey, opts...)
}
