package cli

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"
)

func resumeCommand(out io.Writer) *cli.Command {
	st := newStack(true)

	return &cli.Command{
		Name:  "resume",
		Usage: "Re-poll tasks left pending by an interrupted process",
		Flags: st.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			report, err := uc.ResumeOutstandingTasks(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, report)
		},
	}
}
