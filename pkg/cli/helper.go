package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/ghdigest/pkg/cli/config"
	"github.com/secmon-lab/ghdigest/pkg/infra"
	"github.com/secmon-lab/ghdigest/pkg/usecase"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// stack holds the configuration shared by the commands that run use cases.
// Commands that never reach the task service leave withTaskAPI false so
// that its flags are not required.
type stack struct {
	withTaskAPI bool

	database config.Database
	github   config.GitHub
	fetch    config.Fetch
	sentry   config.Sentry

	taskAPI  config.TaskAPI
	backfill config.Backfill
	bigQuery config.BigQuery
	storage  config.Storage
}

func newStack(withTaskAPI bool) *stack {
	return &stack{withTaskAPI: withTaskAPI}
}

func (x *stack) Flags() []cli.Flag {
	flags := slice.Flatten(
		x.database.Flags(),
		x.github.Flags(),
		x.fetch.Flags(),
		x.sentry.Flags(),
	)
	if x.withTaskAPI {
		flags = slice.Flatten(flags,
			x.taskAPI.Flags(),
			x.backfill.Flags(),
			x.bigQuery.Flags(),
			x.storage.Flags(),
		)
	}
	return flags
}

func (x *stack) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Any("Database", x.database),
		slog.Any("GitHub", x.github),
		slog.Any("Fetch", x.fetch),
		slog.Any("Sentry", x.sentry),
	}
	if x.withTaskAPI {
		attrs = append(attrs,
			slog.Any("TaskAPI", x.taskAPI),
			slog.Any("Backfill", x.backfill),
			slog.Any("BigQuery", x.bigQuery),
			slog.Any("Storage", x.storage),
		)
	}
	return slog.GroupValue(attrs...)
}

// build wires clients into a use case. The returned function releases them.
func (x *stack) build(ctx context.Context) (*usecase.UseCase, func(), error) {
	if err := x.sentry.Configure(ctx); err != nil {
		return nil, nil, err
	}

	ghClient, err := x.github.New()
	if err != nil {
		return nil, nil, err
	}

	repo, closeRepo, err := x.database.NewRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	infraOptions := []infra.Option{
		infra.WithGitHub(ghClient),
		infra.WithRepository(repo),
	}

	ucOptions, err := x.fetch.UseCaseOptions()
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	if x.withTaskAPI {
		taskClient, err := x.taskAPI.New()
		if err != nil {
			closeRepo()
			return nil, nil, err
		}
		infraOptions = append(infraOptions, infra.WithTaskAPI(taskClient))

		if bqClient, err := x.bigQuery.NewClient(ctx); err != nil {
			closeRepo()
			return nil, nil, err
		} else if bqClient != nil {
			infraOptions = append(infraOptions, infra.WithBigQuery(bqClient))
		}

		if storageClient, err := x.storage.NewClient(ctx); err != nil {
			closeRepo()
			return nil, nil, err
		} else if storageClient != nil {
			infraOptions = append(infraOptions, infra.WithStorage(storageClient))
			if c, ok := storageClient.(io.Closer); ok {
				next := closeRepo
				closeRepo = func() {
					safe.Close(c)
					next()
				}
			}
		}

		ucOptions = append(ucOptions, x.taskAPI.UseCaseOptions()...)
		ucOptions = append(ucOptions, x.backfill.UseCaseOptions()...)
	}

	logging.From(ctx).Debug("use case is ready", slog.Any("config", x))
	return usecase.New(infra.New(infraOptions...), ucOptions...), closeRepo, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write result")
	}
	return nil
}
