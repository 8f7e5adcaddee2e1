package fetcher

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits step, 2*step, 3*step ... and stops after maxRetries
type linearBackOff struct {
	step       time.Duration
	maxRetries int
	attempt    int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func newLinearBackOff(step time.Duration, maxRetries int) *linearBackOff {
	return &linearBackOff{step: step, maxRetries: maxRetries}
}

// NextBackOff returns the delay before the next retry or backoff.Stop
func (b *linearBackOff) NextBackOff() time.Duration {
	if b.attempt >= b.maxRetries {
		return backoff.Stop
	}
	b.attempt++
	return b.step * time.Duration(b.attempt)
}

// Reset restarts the schedule
func (b *linearBackOff) Reset() {
	b.attempt = 0
}
