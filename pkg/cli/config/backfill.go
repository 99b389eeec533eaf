package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/usecase"
	"github.com/secmon-lab/ghdigest/pkg/utils/ratelimit"
	"github.com/urfave/cli/v3"
)

// Backfill paces bulk summary generation against the task service
type Backfill struct {
	capacity       int64
	refillInterval time.Duration
	concurrency    int64
}

func (x *Backfill) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "backfill-burst",
			Usage:       "Jobs submitted back to back before pacing starts (0 disables pacing)",
			Category:    "Backfill",
			Destination: &x.capacity,
			Sources:     cli.EnvVars("GHDIGEST_BACKFILL_BURST"),
			Value:       5,
		},
		&cli.DurationFlag{
			Name:        "backfill-interval",
			Usage:       "Interval between paced job submissions",
			Category:    "Backfill",
			Destination: &x.refillInterval,
			Sources:     cli.EnvVars("GHDIGEST_BACKFILL_INTERVAL"),
			Value:       10 * time.Second,
		},
		&cli.Int64Flag{
			Name:        "backfill-concurrency",
			Usage:       "Backfill or resumed jobs in flight at once",
			Category:    "Backfill",
			Destination: &x.concurrency,
			Sources:     cli.EnvVars("GHDIGEST_BACKFILL_CONCURRENCY"),
			Value:       usecase.DefaultBackfillConcurrency,
		},
	}
}

func (x *Backfill) Limiter() *ratelimit.Limiter {
	return ratelimit.New(int(x.capacity), x.refillInterval)
}

func (x *Backfill) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithBackfillLimiter(x.Limiter()),
		usecase.WithBackfillConcurrency(int(x.concurrency)),
	}
}

func (x Backfill) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("Burst", x.capacity),
		slog.Duration("Interval", x.refillInterval),
		slog.Int64("Concurrency", x.concurrency),
	)
}
