package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func summarizeCommand(out io.Writer) *cli.Command {
	var input model.GenerateSummaryInput
	st := newStack(true)

	return &cli.Command{
		Name:    "summarize",
		Aliases: []string{"sum"},
		Usage:   "Generate the weekly summary of one contributor",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "repository-url",
				Aliases:     []string{"u"},
				Usage:       "Repository URL, e.g. https://github.com/owner/repo",
				Sources:     cli.EnvVars("GHDIGEST_REPOSITORY_URL"),
				Destination: &input.RepositoryURL,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "username",
				Usage:       "GitHub login of the contributor",
				Destination: &input.Username,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "week",
				Usage:       "ISO week such as 2024-W07 (current week if empty)",
				Destination: (*string)(&input.Week),
			},
		}, st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if input.Week == "" {
				input.Week = types.WeekOf(logging.CtxTime(ctx))
			}
			input.Cadence = types.PollInteractive
			if err := input.Validate(); err != nil {
				return err
			}

			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			summary, err := uc.GenerateWeeklySummary(ctx, &input)
			if err != nil {
				return err
			}
			return printJSON(out, summary)
		},
	}
}
