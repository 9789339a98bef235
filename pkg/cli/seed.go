package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yourtyme-app/yourtyme/pkg/cli/config"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

func cmdSeed() *cli.Command {
	var userID string
	var city string
	var displayName string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Slack user ID to seed (e.g. U08Q1P3JDJB)",
			Required:    true,
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "city",
			Usage:       "City to record for the user",
			Required:    true,
			Destination: &city,
		},
		&cli.StringFlag{
			Name:        "display-name",
			Usage:       "Display name for the user",
			Destination: &displayName,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Insert or update a user profile (for development and import)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := types.UserID(userID)
			if err := id.Validate(); err != nil {
				return goerr.Wrap(err, "invalid user ID")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			patch := &model.ProfilePatch{
				City: model.String(city),
			}
			if displayName != "" {
				patch.DisplayName = model.String(displayName)
			}

			if err := repo.Profile().Upsert(ctx, id, patch); err != nil {
				return goerr.Wrap(err, "failed to seed profile", goerr.V("user_id", id))
			}

			logging.Default().Info("Seeded profile", "user_id", id, "city", city)
			return nil
		},
	}
}
