package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/taskapi"
	"github.com/secmon-lab/ghdigest/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type TaskAPI struct {
	baseURL string

	dialTimeout           time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	requestTimeout        time.Duration

	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	retryMaxAttempts int64

	interactiveInterval time.Duration
	bulkInterval        time.Duration
}

func (x *TaskAPI) Flags() []cli.Flag {
	timeouts := taskapi.DefaultTimeouts()
	policy := taskapi.DefaultRetryPolicy()

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "task-api-url",
			Usage:       "Base URL of the AI task service",
			Category:    "Task API",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_URL"),
			Required:    true,
		},
		&cli.DurationFlag{
			Name:        "task-api-dial-timeout",
			Usage:       "Timeout of establishing a connection",
			Category:    "Task API",
			Destination: &x.dialTimeout,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_DIAL_TIMEOUT"),
			Value:       timeouts.Dial,
		},
		&cli.DurationFlag{
			Name:        "task-api-tls-timeout",
			Usage:       "Timeout of the TLS handshake",
			Category:    "Task API",
			Destination: &x.tlsHandshakeTimeout,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_TLS_TIMEOUT"),
			Value:       timeouts.TLSHandshake,
		},
		&cli.DurationFlag{
			Name:        "task-api-header-timeout",
			Usage:       "Timeout of waiting for response headers",
			Category:    "Task API",
			Destination: &x.responseHeaderTimeout,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_HEADER_TIMEOUT"),
			Value:       timeouts.ResponseHeader,
		},
		&cli.DurationFlag{
			Name:        "task-api-request-timeout",
			Usage:       "Timeout of one whole request",
			Category:    "Task API",
			Destination: &x.requestTimeout,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_REQUEST_TIMEOUT"),
			Value:       timeouts.Request,
		},
		&cli.DurationFlag{
			Name:        "task-api-retry-base-delay",
			Usage:       "First delay between retries of a call",
			Category:    "Task API",
			Destination: &x.retryBaseDelay,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_RETRY_BASE_DELAY"),
			Value:       policy.BaseDelay,
		},
		&cli.DurationFlag{
			Name:        "task-api-retry-max-delay",
			Usage:       "Upper bound of a delay between retries",
			Category:    "Task API",
			Destination: &x.retryMaxDelay,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_RETRY_MAX_DELAY"),
			Value:       policy.MaxDelay,
		},
		&cli.Int64Flag{
			Name:        "task-api-retry-max-attempts",
			Usage:       "Attempts of one call including the first one",
			Category:    "Task API",
			Destination: &x.retryMaxAttempts,
			Sources:     cli.EnvVars("GHDIGEST_TASK_API_RETRY_MAX_ATTEMPTS"),
			Value:       int64(policy.MaxAttempts),
		},
		&cli.DurationFlag{
			Name:        "poll-interval-interactive",
			Usage:       "Polling interval of tasks waited on by a user",
			Category:    "Task API",
			Destination: &x.interactiveInterval,
			Sources:     cli.EnvVars("GHDIGEST_POLL_INTERVAL_INTERACTIVE"),
			Value:       usecase.DefaultInteractiveInterval,
		},
		&cli.DurationFlag{
			Name:        "poll-interval-bulk",
			Usage:       "Polling interval of backfill and resumed tasks",
			Category:    "Task API",
			Destination: &x.bulkInterval,
			Sources:     cli.EnvVars("GHDIGEST_POLL_INTERVAL_BULK"),
			Value:       usecase.DefaultBulkInterval,
		},
	}
}

func (x *TaskAPI) RetryPolicy() taskapi.RetryPolicy {
	policy := taskapi.DefaultRetryPolicy()
	policy.BaseDelay = x.retryBaseDelay
	policy.MaxDelay = x.retryMaxDelay
	policy.MaxAttempts = int(x.retryMaxAttempts)
	return policy
}

func (x *TaskAPI) Timeouts() taskapi.Timeouts {
	return taskapi.Timeouts{
		Dial:           x.dialTimeout,
		TLSHandshake:   x.tlsHandshakeTimeout,
		ResponseHeader: x.responseHeaderTimeout,
		Request:        x.requestTimeout,
	}
}

func (x *TaskAPI) New() (*taskapi.Client, error) {
	if x.retryMaxAttempts < 1 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "retry attempts must be positive", goerr.V("attempts", x.retryMaxAttempts))
	}
	return taskapi.New(x.baseURL,
		taskapi.WithTimeouts(x.Timeouts()),
		taskapi.WithRetryPolicy(x.RetryPolicy()),
	)
}

func (x *TaskAPI) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithPollIntervals(x.interactiveInterval, x.bulkInterval),
	}
}

func (x TaskAPI) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("BaseURL", x.baseURL),
		slog.Any("Timeouts", x.Timeouts()),
		slog.Any("RetryPolicy", x.RetryPolicy()),
		slog.Duration("InteractiveInterval", x.interactiveInterval),
		slog.Duration("BulkInterval", x.bulkInterval),
	)
}
