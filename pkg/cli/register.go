package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/cli/config"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func registerCommand(out io.Writer) *cli.Command {
	var (
		repoURL    string
		credential config.Credential
	)
	st := newStack(false)

	return &cli.Command{
		Name:    "register",
		Aliases: []string{"reg"},
		Usage:   "Register a repository with a credential to fetch it",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "repository-url",
				Aliases:     []string{"u"},
				Usage:       "Repository URL, e.g. https://github.com/owner/repo",
				Sources:     cli.EnvVars("GHDIGEST_REPOSITORY_URL"),
				Destination: &repoURL,
				Required:    true,
			},
		}, credential.Flags(), st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.From(ctx).Info("registering repository",
				slog.String("url", repoURL),
				slog.Any("credential", credential),
			)

			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			repo, err := uc.RegisterRepository(ctx, &model.RegisterRepositoryInput{
				RepositoryURL: repoURL,
				Kind:          credential.Kind(),
				Token:         credential.Token(),
				AppID:         credential.AppID(),
				InstallID:     credential.InstallID(),
				PrivateKey:    credential.PrivateKey(),
			})
			if err != nil {
				return err
			}
			return printJSON(out, repo)
		},
	}
}
