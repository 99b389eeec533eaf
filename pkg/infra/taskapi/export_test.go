package taskapi

import (
	"context"
	"time"
)

var IsRetryable = isRetryable

// BackOffDelays returns the sleeps the policy would take between attempts
func BackOffDelays(policy RetryPolicy, rand func() float64) []time.Duration {
	b := policy.newBackOff(context.Background(), rand)
	var delays []time.Duration
	for {
		d := b.NextBackOff()
		if d < 0 {
			return delays
		}
		delays = append(delays, d)
	}
}
