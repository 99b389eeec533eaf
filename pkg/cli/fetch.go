package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func fetchCommand(out io.Writer) *cli.Command {
	var repoURL string
	st := newStack(false)

	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Fetch new contributions of registered repositories from GitHub",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "repository-url",
				Aliases:     []string{"u"},
				Usage:       "Fetch only this repository, e.g. https://github.com/owner/repo",
				Sources:     cli.EnvVars("GHDIGEST_REPOSITORY_URL"),
				Destination: &repoURL,
			},
		}, st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			var report *model.FetchReport
			if repoURL != "" {
				report, err = uc.FetchRepositoryByURL(ctx, repoURL)
			} else {
				report, err = uc.FetchAllRepositories(ctx)
			}
			if err != nil {
				return err
			}

			if err := printJSON(out, report); err != nil {
				return err
			}

			if limit := report.RateLimited(); limit != nil {
				return goerr.New("GitHub rate limit exceeded",
					goerr.V("remaining", limit.Remaining),
					goerr.V("reset", limit.Reset),
				)
			}
			if len(report.Errors) > 0 {
				logging.From(ctx).Warn("some repositories were not fetched", slog.Any("errors", report.Errors))
			}
			return nil
		},
	}
}
