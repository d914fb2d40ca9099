package desk

import (
	"context"
)

// API defines the interface for desk operations
type API interface {
	// Call performs a request without a body
	Call(ctx context.Context, resource, method string) (*Response, error)

	// Do performs a prepared request, retrying once on 429
	Do(ctx context.Context, req *Request) (*Response, error)

	// IsExceedingAPILimits reports whether no calls remain in the window
	IsExceedingAPILimits(ctx context.Context) (bool, error)

	// IsNearingAPILimits reports whether remaining calls are at or below threshold percent
	IsNearingAPILimits(ctx context.Context, threshold int) (bool, error)

	// RateLimit returns the last observed rate-limit state
	RateLimit() RateLimitState
}

var _ API = (*Client)(nil)
