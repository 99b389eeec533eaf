// Package ratelimit paces outbound job submission with a token bucket.
package ratelimit

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket holding at most Capacity tokens and gaining one
// token every RefillInterval. A caller takes one token per job, so up to
// Capacity jobs start back to back and later jobs are spaced by RefillInterval.
type Limiter struct {
	bucket         *rate.Limiter
	capacity       int
	refillInterval time.Duration
}

// New creates a full bucket. Non-positive capacity or interval disables limiting.
func New(capacity int, refillInterval time.Duration) *Limiter {
	if capacity <= 0 || refillInterval <= 0 {
		return &Limiter{bucket: rate.NewLimiter(rate.Inf, 0)}
	}

	return &Limiter{
		bucket:         rate.NewLimiter(rate.Every(refillInterval), capacity),
		capacity:       capacity,
		refillInterval: refillInterval,
	}
}

// Wait blocks until a token is available or ctx is done
func (x *Limiter) Wait(ctx context.Context) error {
	if err := x.bucket.Wait(ctx); err != nil {
		return goerr.Wrap(err, "failed to wait for rate limiter",
			goerr.V("capacity", x.capacity),
			goerr.V("refill_interval", x.refillInterval),
		)
	}
	return nil
}

// Allow takes a token if one is available now
func (x *Limiter) Allow() bool {
	return x.bucket.Allow()
}

// Tokens returns the number of tokens currently in the bucket
func (x *Limiter) Tokens() float64 {
	return x.bucket.Tokens()
}

func (x *Limiter) Capacity() int                 { return x.capacity }
func (x *Limiter) RefillInterval() time.Duration { return x.refillInterval }
