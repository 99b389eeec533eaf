package config

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Sentry struct {
	dsn         string
	environment string
	release     string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (errors are only logged if empty)",
			Category:    "Sentry",
			Destination: &x.dsn,
			Sources:     cli.EnvVars("GHDIGEST_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Destination: &x.environment,
			Sources:     cli.EnvVars("GHDIGEST_SENTRY_ENV"),
		},
		&cli.StringFlag{
			Name:        "sentry-release",
			Usage:       "Release name attached to Sentry events",
			Category:    "Sentry",
			Destination: &x.release,
			Sources:     cli.EnvVars("GHDIGEST_SENTRY_RELEASE"),
		},
	}
}

func (x *Sentry) Enabled() bool { return x.dsn != "" }

func (x *Sentry) Configure(ctx context.Context) error {
	if !x.Enabled() {
		logging.From(ctx).Debug("sentry is not configured")
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.environment,
		Release:     x.release,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry", goerr.V("environment", x.environment))
	}

	return nil
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("Enabled", x.Enabled()),
		slog.String("Environment", x.environment),
		slog.String("Release", x.release),
	)
}
