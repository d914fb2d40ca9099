package desk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Rate-limit headers sent by desk on every response
const (
	HeaderRateLimitLimit     = "X-Rate-Limit-Limit"
	HeaderRateLimitRemaining = "X-Rate-Limit-Remaining"
	HeaderRateLimitReset     = "X-Rate-Limit-Reset"
)

// DefaultNearingThreshold is the remaining-calls percentage at or below which
// a client is considered to be nearing its limit
const DefaultNearingThreshold = 85

// RateLimitState holds the most recently observed rate-limit values.
// Reset is the number of seconds until the window resets, not a timestamp.
type RateLimitState struct {
	Limit     int
	Remaining int
	Reset     int
}

// Observed reports whether any rate-limit headers have been seen
func (s RateLimitState) Observed() bool {
	return s.Limit > 0
}

// Exceeding reports whether no calls remain in the current window
func (s RateLimitState) Exceeding() bool {
	return s.Limit > 0 && s.Remaining <= 0
}

// Nearing reports whether the remaining share of calls is at or below threshold percent
func (s RateLimitState) Nearing(threshold int) bool {
	if s.Limit <= 0 {
		return false
	}
	return s.Remaining*100/s.Limit <= threshold
}

// ResetWindow returns the time until the window resets
func (s RateLimitState) ResetWindow() time.Duration {
	if s.Reset <= 0 {
		return 0
	}
	return time.Duration(s.Reset) * time.Second
}

// ProbeFunc makes a cheap API call whose response headers populate the tracker
type ProbeFunc func(ctx context.Context) error

// RateLimitTracker keeps the rate-limit state of one client
type RateLimitTracker struct {
	mu        sync.Mutex
	state     RateLimitState
	holdUntil time.Time

	threshold int
	probe     ProbeFunc
	probes    singleflight.Group
	logger    zerolog.Logger
}

// NewRateLimitTracker creates a tracker. probe may be nil, in which case
// queries answer from whatever has been observed. A threshold <= 0 selects
// DefaultNearingThreshold.
func NewRateLimitTracker(probe ProbeFunc, threshold int, logger zerolog.Logger) *RateLimitTracker {
	if threshold <= 0 {
		threshold = DefaultNearingThreshold
	}
	return &RateLimitTracker{
		threshold: threshold,
		probe:     probe,
		logger:    logger,
	}
}

// Observe records the rate-limit headers of a response. Without a usable
// limit header the previous state is kept and false is returned.
func (t *RateLimitTracker) Observe(h http.Header) bool {
	limit, ok := intHeader(h, HeaderRateLimitLimit)
	if !ok || limit <= 0 {
		return false
	}
	remaining, _ := intHeader(h, HeaderRateLimitRemaining)
	reset, _ := intHeader(h, HeaderRateLimitReset)

	state := RateLimitState{Limit: limit, Remaining: remaining, Reset: reset}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	switch {
	case state.Exceeding():
		t.logger.Error().
			Int("remaining", state.Remaining).
			Int("limit", state.Limit).
			Int("reset_seconds", state.Reset).
			Msg("Exceeded desk API limits")
	case state.Nearing(t.threshold):
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Int("limit", state.Limit).
			Int("reset_seconds", state.Reset).
			Msg("Nearing desk API limits")
	}

	return true
}

// State returns a copy of the current state
func (t *RateLimitTracker) State() RateLimitState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsExceeding reports whether the limit has been exceeded as of the last call
func (t *RateLimitTracker) IsExceeding(ctx context.Context) (bool, error) {
	if err := t.ensureObserved(ctx); err != nil {
		return false, err
	}
	return t.State().Exceeding(), nil
}

// IsNearing reports whether the remaining share of calls is at or below
// threshold percent. A threshold <= 0 uses the tracker default.
func (t *RateLimitTracker) IsNearing(ctx context.Context, threshold int) (bool, error) {
	if threshold <= 0 {
		threshold = t.threshold
	}
	if err := t.ensureObserved(ctx); err != nil {
		return false, err
	}
	return t.State().Nearing(threshold), nil
}

// ensureObserved runs the probe once when nothing has been observed yet.
// Concurrent callers share a single probe, which outlives the cancellation
// of whichever caller started it.
func (t *RateLimitTracker) ensureObserved(ctx context.Context) error {
	if t.probe == nil || t.State().Observed() {
		return nil
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := t.probes.DoChan("probe", func() (any, error) {
		return nil, t.probe(probeCtx)
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit probe: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("rate limit probe failed: %w", res.Err)
		}
		return nil
	}
}

// hold blocks new dispatches until the given time
func (t *RateLimitTracker) hold(until time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if until.After(t.holdUntil) {
		t.holdUntil = until
	}
}

// heldFor returns how long new dispatches still have to wait
func (t *RateLimitTracker) heldFor(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Before(t.holdUntil) {
		return t.holdUntil.Sub(now)
	}
	return 0
}

func intHeader(h http.Header, name string) (int, bool) {
	if h == nil {
		return 0, false
	}
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
