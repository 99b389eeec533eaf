package config

import (
	"log/slog"

	"github.com/secmon-lab/ghdigest/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type Fetch struct {
	perPage            int64
	concurrency        int64
	credentialStrategy string
}

func (x *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "fetch-per-page",
			Usage:       "Items requested per GitHub API page (max 100)",
			Category:    "Fetch",
			Destination: &x.perPage,
			Sources:     cli.EnvVars("GHDIGEST_FETCH_PER_PAGE"),
			Value:       usecase.DefaultPerPage,
		},
		&cli.Int64Flag{
			Name:        "fetch-concurrency",
			Usage:       "Repositories fetched at once",
			Category:    "Fetch",
			Destination: &x.concurrency,
			Sources:     cli.EnvVars("GHDIGEST_FETCH_CONCURRENCY"),
			Value:       usecase.DefaultFetchConcurrency,
		},
		&cli.StringFlag{
			Name:        "credential-strategy",
			Usage:       "Choice among credentials linked to a repository [first_linked|most_recent|round_robin]",
			Category:    "Fetch",
			Destination: &x.credentialStrategy,
			Sources:     cli.EnvVars("GHDIGEST_CREDENTIAL_STRATEGY"),
			Value:       "first_linked",
		},
	}
}

func (x *Fetch) UseCaseOptions() ([]usecase.Option, error) {
	strategy, err := usecase.NewCredentialStrategy(x.credentialStrategy)
	if err != nil {
		return nil, err
	}

	return []usecase.Option{
		usecase.WithPerPage(int(x.perPage)),
		usecase.WithFetchConcurrency(int(x.concurrency)),
		usecase.WithCredentialStrategy(strategy),
	}, nil
}

func (x Fetch) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("PerPage", x.perPage),
		slog.Int64("Concurrency", x.concurrency),
		slog.String("CredentialStrategy", x.credentialStrategy),
	)
}
