package taskapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/url"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// RetryPolicy bounds retries of a single task API call. Delays grow
// exponentially from BaseDelay up to MaxDelay, and each delay gets a random
// extra of [0, JitterRatio*delay). MaxAttempts includes the first attempt.
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	JitterRatio float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		MaxAttempts: 5,
		JitterRatio: 0.5,
	}
}

// MaxTotalDelay is the upper bound of time spent sleeping between attempts
func (x RetryPolicy) MaxTotalDelay() time.Duration {
	var total time.Duration
	d := x.BaseDelay
	for i := 1; i < x.MaxAttempts; i++ {
		if d > x.MaxDelay {
			d = x.MaxDelay
		}
		total += d + time.Duration(x.JitterRatio*float64(d))
		d *= 2
	}
	return total
}

type jitterBackOff struct {
	backoff.BackOff
	ratio float64
	rand  func() float64
}

func (x *jitterBackOff) NextBackOff() time.Duration {
	d := x.BackOff.NextBackOff()
	if d == backoff.Stop || x.ratio <= 0 {
		return d
	}
	return d + time.Duration(x.rand()*x.ratio*float64(d))
}

func (x RetryPolicy) newBackOff(ctx context.Context, rand func() float64) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = x.BaseDelay
	exp.MaxInterval = x.MaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := x.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithMaxRetries(&jitterBackOff{BackOff: exp, ratio: x.JitterRatio, rand: rand}, uint64(retries))
	return backoff.WithContext(b, ctx)
}

// retry runs op under the policy. Non-retryable errors are returned as is;
// running out of attempts yields types.ErrRetriesExhausted.
func (x *Client) retry(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var (
		attempts  int
		permanent bool
		lastErr   error
	)

	operation := func() error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		logging.From(ctx).Warn("retrying task API call",
			slog.String("operation", name),
			slog.Int("attempt", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(operation, x.retryPolicy.newBackOff(ctx, x.rand), notify)
	switch {
	case err == nil:
		return nil
	case permanent:
		return lastErr
	case ctx.Err() != nil:
		return goerr.Wrap(ctx.Err(), "task API call canceled",
			goerr.V("operation", name),
			goerr.V("attempts", attempts),
		)
	default:
		return goerr.Wrap(types.ErrRetriesExhausted, "task API call did not succeed",
			goerr.V("operation", name),
			goerr.V("attempts", attempts),
			goerr.V("last_error", lastErr.Error()),
		)
	}
}

// isRetryable tells transient failures (connection level, timeouts, 5xx, 429)
// from those that will not change on another attempt.
func isRetryable(err error) bool {
	var statusErr *types.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	if errors.Is(err, types.ErrInvalidResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// *url.Error satisfies net.Error itself, so look at what it wraps
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		err = urlErr.Err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}
