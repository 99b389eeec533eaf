package cli

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func askCommand(out io.Writer) *cli.Command {
	var input model.AskQuestionInput
	st := newStack(true)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a question about a repository",
		ArgsUsage: "<question>",
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
				Usage:       "Add the weekly summary of this contributor as context",
				Destination: &input.Username,
			},
			&cli.StringFlag{
				Name:        "week",
				Usage:       "ISO week of the summary given as context",
				Destination: (*string)(&input.Week),
			},
		}, st.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			input.Question = strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if input.Question == "" {
				return goerr.Wrap(types.ErrValidationFailed, "question is required")
			}
			if err := input.Validate(); err != nil {
				return err
			}

			uc, closer, err := st.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			qa, err := uc.AskQuestion(ctx, &input)
			if err != nil {
				return err
			}
			return printJSON(out, qa)
		},
	}
}
