package desk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateHeader(limit, remaining, reset string) http.Header {
	h := http.Header{}
	if limit != "" {
		h.Set(HeaderRateLimitLimit, limit)
	}
	if remaining != "" {
		h.Set(HeaderRateLimitRemaining, remaining)
	}
	if reset != "" {
		h.Set(HeaderRateLimitReset, reset)
	}
	return h
}

func TestRateLimitTracker_Observe(t *testing.T) {
	tests := []struct {
		name      string
		header    http.Header
		wantOK    bool
		wantState RateLimitState
	}{
		{
			name:      "all headers",
			header:    rateHeader("60", "12", "35"),
			wantOK:    true,
			wantState: RateLimitState{Limit: 60, Remaining: 12, Reset: 35},
		},
		{
			name:   "no headers",
			header: http.Header{},
		},
		{
			name:   "nil header",
			header: nil,
		},
		{
			name:   "zero limit",
			header: rateHeader("0", "0", "10"),
		},
		{
			name:   "non numeric limit",
			header: rateHeader("sixty", "10", "10"),
		},
		{
			name:      "non numeric remaining and reset",
			header:    rateHeader("60", "n/a", "soon"),
			wantOK:    true,
			wantState: RateLimitState{Limit: 60},
		},
		{
			name:      "padded values",
			header:    rateHeader(" 60 ", " 30", "5 "),
			wantOK:    true,
			wantState: RateLimitState{Limit: 60, Remaining: 30, Reset: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewRateLimitTracker(nil, 0, zerolog.Nop())
			assert.Equal(t, tt.wantOK, tracker.Observe(tt.header))
			assert.Equal(t, tt.wantState, tracker.State())
		})
	}
}

func TestRateLimitTracker_ObserveKeepsStateWithoutHeaders(t *testing.T) {
	tracker := NewRateLimitTracker(nil, 0, zerolog.Nop())
	require.True(t, tracker.Observe(rateHeader("60", "40", "20")))

	assert.False(t, tracker.Observe(http.Header{}))
	assert.Equal(t, RateLimitState{Limit: 60, Remaining: 40, Reset: 20}, tracker.State())
}

func TestRateLimitState(t *testing.T) {
	tests := []struct {
		name          string
		state         RateLimitState
		threshold     int
		wantObserved  bool
		wantExceeding bool
		wantNearing   bool
		wantWindow    time.Duration
	}{
		{
			name:      "unobserved",
			state:     RateLimitState{},
			threshold: 85,
		},
		{
			name:         "fresh window",
			state:        RateLimitState{Limit: 60, Remaining: 60, Reset: 60},
			threshold:    85,
			wantObserved: true,
			wantWindow:   time.Minute,
		},
		{
			name:         "exactly at threshold",
			state:        RateLimitState{Limit: 100, Remaining: 85, Reset: 10},
			threshold:    85,
			wantObserved: true,
			wantNearing:  true,
			wantWindow:   10 * time.Second,
		},
		{
			name:         "just above threshold",
			state:        RateLimitState{Limit: 100, Remaining: 86, Reset: 10},
			threshold:    85,
			wantObserved: true,
			wantWindow:   10 * time.Second,
		},
		{
			name:          "exhausted",
			state:         RateLimitState{Limit: 60, Remaining: 0, Reset: 3},
			threshold:     85,
			wantObserved:  true,
			wantExceeding: true,
			wantNearing:   true,
			wantWindow:    3 * time.Second,
		},
		{
			name:          "negative reset",
			state:         RateLimitState{Limit: 60, Remaining: 0, Reset: -4},
			threshold:     10,
			wantObserved:  true,
			wantExceeding: true,
			wantNearing:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantObserved, tt.state.Observed())
			assert.Equal(t, tt.wantExceeding, tt.state.Exceeding())
			assert.Equal(t, tt.wantNearing, tt.state.Nearing(tt.threshold))
			assert.Equal(t, tt.wantWindow, tt.state.ResetWindow())
		})
	}
}

func TestRateLimitTracker_ProbeCoalesced(t *testing.T) {
	var probes atomic.Int32
	release := make(chan struct{})

	var tracker *RateLimitTracker
	tracker = NewRateLimitTracker(func(ctx context.Context) error {
		probes.Add(1)
		<-release
		tracker.Observe(rateHeader("60", "1", "30"))
		return nil
	}, 0, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nearing, err := tracker.IsNearing(context.Background(), 0)
			assert.NoError(t, err)
			results[i] = nearing
		}(i)
	}

	// Let the goroutines pile up on the probe before releasing it
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, probes.Load(), int32(8))
	assert.GreaterOrEqual(t, probes.Load(), int32(1))
	for _, nearing := range results {
		assert.True(t, nearing)
	}

	// Observed now, so no further probes
	before := probes.Load()
	_, err := tracker.IsExceeding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, probes.Load())
}

func TestRateLimitTracker_ProbeError(t *testing.T) {
	tracker := NewRateLimitTracker(func(ctx context.Context) error {
		return errors.New("boom")
	}, 0, zerolog.Nop())

	_, err := tracker.IsExceeding(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "rate limit probe failed: boom")
}

func TestRateLimitTracker_ProbeSurvivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	var tracker *RateLimitTracker
	tracker = NewRateLimitTracker(func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return err
		}
		tracker.Observe(rateHeader("60", "0", "30"))
		return nil
	}, 0, zerolog.Nop())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := tracker.IsExceeding(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		exceeding bool
		err       error
	}
	second := make(chan result, 1)
	go func() {
		exceeding, err := tracker.IsExceeding(context.Background())
		second <- result{exceeding, err}
	}()

	cancel()
	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.exceeding)
	assert.True(t, tracker.State().Observed())
}

func TestRateLimitTracker_NoProbe(t *testing.T) {
	tracker := NewRateLimitTracker(nil, 50, zerolog.Nop())

	exceeding, err := tracker.IsExceeding(context.Background())
	require.NoError(t, err)
	assert.False(t, exceeding)

	tracker.Observe(rateHeader("100", "40", "10"))
	nearing, err := tracker.IsNearing(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, nearing)
}

func TestRateLimitTracker_Hold(t *testing.T) {
	tracker := NewRateLimitTracker(nil, 0, zerolog.Nop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, tracker.heldFor(now))

	tracker.hold(now.Add(10 * time.Second))
	assert.Equal(t, 10*time.Second, tracker.heldFor(now))
	assert.Equal(t, 4*time.Second, tracker.heldFor(now.Add(6*time.Second)))
	assert.Zero(t, tracker.heldFor(now.Add(11*time.Second)))

	// An earlier deadline never shortens an existing hold
	tracker.hold(now.Add(2 * time.Second))
	assert.Equal(t, 10*time.Second, tracker.heldFor(now))
}
