package cli

import (
	"context"

	"github.com/secmon-lab/ghdigest/pkg/cli/config"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	var database config.Database

	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database schema migrations",
		Flags: database.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := database.Migrate(ctx); err != nil {
				return err
			}
			logging.From(ctx).Info("database schema is up to date")
			return nil
		},
	}
}
