package usecase

import (
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra"
	"github.com/secmon-lab/ghdigest/pkg/utils/ratelimit"
)

const (
	DefaultFetchConcurrency    = 4
	DefaultPerPage             = 100
	DefaultInteractiveInterval = 2 * time.Second
	DefaultBulkInterval        = 15 * time.Second
	DefaultBackfillConcurrency = 4
)

type UseCase struct {
	clients *infra.Clients

	credentialStrategy CredentialStrategy
	fetchConcurrency   int
	perPage            int

	pollIntervals map[types.PollCadence]time.Duration

	backfillLimiter     *ratelimit.Limiter
	backfillConcurrency int
}

var _ interfaces.UseCase = (*UseCase)(nil)

type Option func(*UseCase)

func WithCredentialStrategy(strategy CredentialStrategy) Option {
	return func(x *UseCase) {
		x.credentialStrategy = strategy
	}
}

// WithFetchConcurrency sets how many repositories are fetched at once
func WithFetchConcurrency(n int) Option {
	return func(x *UseCase) {
		if n > 0 {
			x.fetchConcurrency = n
		}
	}
}

func WithPerPage(n int) Option {
	return func(x *UseCase) {
		if n > 0 {
			x.perPage = n
		}
	}
}

func WithPollIntervals(interactive, bulk time.Duration) Option {
	return func(x *UseCase) {
		if interactive > 0 {
			x.pollIntervals[types.PollInteractive] = interactive
		}
		if bulk > 0 {
			x.pollIntervals[types.PollBulk] = bulk
		}
	}
}

// WithBackfillLimiter paces job submission of Backfill
func WithBackfillLimiter(limiter *ratelimit.Limiter) Option {
	return func(x *UseCase) {
		x.backfillLimiter = limiter
	}
}

// WithBackfillConcurrency bounds the number of backfill jobs in flight
func WithBackfillConcurrency(n int) Option {
	return func(x *UseCase) {
		if n > 0 {
			x.backfillConcurrency = n
		}
	}
}

func New(clients *infra.Clients, options ...Option) *UseCase {
	uc := &UseCase{
		clients:            clients,
		credentialStrategy: &FirstLinked{},
		fetchConcurrency:   DefaultFetchConcurrency,
		perPage:            DefaultPerPage,
		pollIntervals: map[types.PollCadence]time.Duration{
			types.PollInteractive: DefaultInteractiveInterval,
			types.PollBulk:        DefaultBulkInterval,
		},
		backfillLimiter:     ratelimit.New(0, 0),
		backfillConcurrency: DefaultBackfillConcurrency,
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

func (x *UseCase) pollInterval(cadence types.PollCadence) time.Duration {
	if d, ok := x.pollIntervals[cadence]; ok {
		return d
	}
	return x.pollIntervals[types.PollInteractive]
}
