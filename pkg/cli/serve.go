package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/yourtyme-app/yourtyme/pkg/cli/config"
	httpctrl "github.com/yourtyme-app/yourtyme/pkg/controller/http"
	"github.com/yourtyme-app/yourtyme/pkg/service/slack"
	"github.com/yourtyme-app/yourtyme/pkg/service/worker"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var refreshInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack
	var worldtimeCfg config.Worldtime
	var syncCfg config.Sync

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("YOURTYME_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL for the application (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("YOURTYME_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.DurationFlag{
			Name:        "snapshot-refresh-interval",
			Usage:       "Interval for reconciling channel member snapshots with profiles (0 disables the worker)",
			Sources:     cli.EnvVars("YOURTYME_SNAPSHOT_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, worldtimeCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Load the home sync policy
			syncPolicy, err := syncCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load sync policy")
			}

			ucOpts := []usecase.Option{
				usecase.WithSyncPolicy(syncPolicy),
			}

			// Initialize Slack service if bot token is provided
			if slackCfg.BotToken() != "" {
				slackSvc, err := slack.New(slackCfg.BotToken())
				if err != nil {
					return goerr.Wrap(err, "failed to initialize slack service")
				}
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logging.Default().Info("Slack service enabled")
			} else {
				logging.Default().Warn("Slack Bot Token not configured, App Home sync will be unavailable")
			}

			// Initialize worldtime client if API key is provided
			timeSvc, err := worldtimeCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize worldtime client")
			}
			if worldtimeCfg.IsConfigured() {
				ucOpts = append(ucOpts, usecase.WithWorldtime(timeSvc))
				logging.Default().Info("Worldtime service enabled")
			} else {
				logging.Default().Warn("Worldtime API key not configured, times will render as unavailable")
			}

			// Configure the OAuth install flow
			authUC, err := slackCfg.ConfigureAuth(repo, baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authUC != nil {
				ucOpts = append(ucOpts, usecase.WithAuth(authUC))
				logging.Default().Info("Slack OAuth install flow enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// Start the snapshot refresh worker if enabled
			var refreshWorker *worker.SnapshotRefreshWorker
			if refreshInterval > 0 {
				refreshWorker = worker.NewSnapshotRefreshWorker(repo, refreshInterval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start snapshot refresh worker")
				}
			}

			// Create HTTP server
			httpOpts := []httpctrl.Options{}
			if timeSvc != nil {
				httpOpts = append(httpOpts, httpctrl.WithWorldtime(timeSvc))
			}
			if slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackSigningSecret(slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook surface enabled")
			}

			httpHandler, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
