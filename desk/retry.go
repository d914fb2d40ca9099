package desk

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy decides whether a throttled (429) request is sent again.
// attempt is the number of retries already made for the request; state is
// the rate-limit state observed from the throttled response.
type RetryPolicy interface {
	Delay(attempt int, state RateLimitState) (time.Duration, bool)
}

// ResetWindowPolicy waits for the full reset window before each retry.
// The zero value never retries.
type ResetWindowPolicy struct {
	MaxRetries int
}

// DefaultRetryPolicy retries once after the advertised reset window
var DefaultRetryPolicy RetryPolicy = ResetWindowPolicy{MaxRetries: 1}

func (p ResetWindowPolicy) Delay(attempt int, state RateLimitState) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	return state.ResetWindow(), true
}

// ExponentialPolicy retries with exponential backoff and jitter. A delay is
// never shorter than the reset window desk advertised.
type ExponentialPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewExponentialPolicy returns a policy with conservative intervals
func NewExponentialPolicy(maxRetries int) ExponentialPolicy {
	return ExponentialPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
	}
}

func (p ExponentialPolicy) Delay(attempt int, state RateLimitState) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.Reset()

	var delay time.Duration
	for i := 0; i <= attempt; i++ {
		delay = b.NextBackOff()
	}

	if window := state.ResetWindow(); window > delay {
		delay = window
	}
	return delay, true
}
