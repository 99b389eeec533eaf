package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func backfillCommand(out io.Writer) *cli.Command {
	var input model.BackfillInput
	st := newStack(true)

	return &cli.Command{
		Name:    "backfill",
		Aliases: []string{"bf"},
		Usage:   "Generate missing summaries of every contributor for one week",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "week",
				Usage:       "ISO week such as 2024-W07 (previous week if empty)",
				Destination: (*string)(&input.Week),
			},
		}, st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if input.Week == "" {
				input.Week = types.WeekOf(logging.CtxTime(ctx).AddDate(0, 0, -7))
			}
			if err := input.Validate(); err != nil {
				return err
			}

			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			report, err := uc.Backfill(ctx, &input)
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				logging.From(ctx).Warn("some summaries were not generated",
					slog.Int("failed", report.Failed),
					slog.Any("errors", report.Errors),
				)
			}
			return printJSON(out, report)
		},
	}
}
