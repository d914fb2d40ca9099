package desk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the API endpoint template used by NewClient
const DefaultBaseURL = "https://<YOUR_DESK_INSTANCE>.desk.com/api/v2"

// Client represents a desk API client
type Client struct {
	baseURL       string
	transport     Transport
	tracker       *RateLimitTracker
	retryPolicy   RetryPolicy
	probeResource string
	pacer         *rate.Limiter
	metrics       *Metrics
	logger        zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient returns an OAuth client with the default API values set.
// Its credentials are empty, so it is mostly useful with WithTransport.
func NewClient(opts ...Option) *Client {
	return newClient(DefaultBaseURL, OAuth1Credentials{}, opts...)
}

// NewBasicClient creates a client authenticating as an agent
func NewBasicClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	return New(baseURL, BasicCredentials{Username: username, Password: password}, opts...)
}

// NewOAuthClient creates a client signing requests with OAuth1 API application credentials
func NewOAuthClient(baseURL, apiKey, apiSecret, apiToken, apiTokenSecret string, opts ...Option) (*Client, error) {
	return New(baseURL, OAuth1Credentials{
		APIKey:      apiKey,
		APISecret:   apiSecret,
		Token:       apiToken,
		TokenSecret: apiTokenSecret,
	}, opts...)
}

// New creates a client for baseURL, for example https://example.desk.com/api/v2
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errorf("desk URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errorf("invalid desk URL %q", baseURL)
	}
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	return newClient(baseURL, creds, opts...), nil
}

func newClient(baseURL string, creds Credentials, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Client{
		baseURL:       baseURL,
		transport:     o.transport,
		retryPolicy:   o.retryPolicy,
		probeResource: o.probeResource,
		pacer:         o.pacer,
		metrics:       o.metrics,
		logger:        o.logger,
		now:           time.Now,
		sleep:         sleepContext,
	}
	if c.transport == nil {
		c.transport = newRestTransport(baseURL, creds, o.timeout, o.legacyTLS, o.logger)
	}
	c.tracker = NewRateLimitTracker(c.probe, o.nearingThreshold, o.logger)

	return c
}

// BaseURL returns the API endpoint the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call performs a request without a body
func (c *Client) Call(ctx context.Context, resource, method string) (*Response, error) {
	return c.Do(ctx, NewRequest(method, resource))
}

// Do performs a request. A 429 response is retried according to the retry
// policy; every other status, 422 included, is returned to the caller as is.
// An error is returned only when no response could be obtained.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errorf("request is nil")
	}

	if err := c.awaitWindow(ctx); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	for attempt := 0; resp.StatusCode == http.StatusTooManyRequests; attempt++ {
		delay, ok := c.retryPolicy.Delay(attempt, c.tracker.State())
		if !ok {
			break
		}

		c.logger.Warn().
			Str("method", req.Method).
			Str("resource", req.Resource).
			Dur("wait", delay).
			Int("attempt", attempt+1).
			Msg("Hit desk API rate limit, waiting before retry")
		c.metrics.recordRetry(req.Method)

		c.tracker.hold(c.now().Add(delay))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting for rate limit reset: %w", err)
		}

		resp, err = c.send(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// Execute sends jsonBody with req and decodes a 200/201 response into T.
//
// ok is false with a nil error when desk rejected the payload with 422.
// Any other status yields an *APIError.
func Execute[T any](ctx context.Context, c *Client, req *Request, jsonBody string) (value T, ok bool, err error) {
	if req == nil {
		return value, false, errorf("request is nil")
	}

	resp, err := c.Do(ctx, req.withJSONBody(jsonBody))
	if err != nil {
		return value, false, err
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		c.metrics.recordRejection(req.Method)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("resource", req.Resource).
			Str("request_json", jsonBody).
			Msg("Desk failed to validate resource")
		return value, false, nil
	}

	if !resp.IsSuccess() || resp.Err != nil {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(resp.Body),
			Err:        resp.Err,
		}
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("resource", req.Resource).
			Str("body", apiErr.Body).
			Msg("Desk API request failed")
		return value, false, apiErr
	}

	value, err = Decode[T](resp.Body)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// IsExceedingAPILimits reports whether the API limit has been exceeded as of
// the last call. With no data yet, a probe call is made first.
func (c *Client) IsExceedingAPILimits(ctx context.Context) (bool, error) {
	return c.tracker.IsExceeding(ctx)
}

// IsNearingAPILimits reports whether the remaining share of calls is at or
// below threshold percent; threshold <= 0 uses the client default (85).
// With no data yet, a probe call is made first.
func (c *Client) IsNearingAPILimits(ctx context.Context, threshold int) (bool, error) {
	return c.tracker.IsNearing(ctx, threshold)
}

// RateLimit returns the last observed rate-limit state
func (c *Client) RateLimit() RateLimitState {
	return c.tracker.State()
}

// send performs one exchange and records its rate-limit headers
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("resource", req.Resource).
		Msg("Making desk API request")

	resp := c.transport.Send(ctx, req)
	if resp.Err != nil && resp.StatusCode == 0 {
		c.metrics.recordTransportError(req.Method)
		c.logger.Error().
			Err(resp.Err).
			Str("method", req.Method).
			Str("resource", req.Resource).
			Msg("Error retrieving desk response")

		var transportErr *TransportError
		if errors.As(resp.Err, &transportErr) {
			return nil, resp.Err
		}
		return nil, &TransportError{Method: req.Method, Resource: req.Resource, Err: resp.Err}
	}

	c.metrics.recordResponse(req.Method, resp.StatusCode)
	if c.tracker.Observe(resp.Header) {
		c.metrics.recordRateLimit(c.tracker.State())
	}

	return resp, nil
}

// probe loads rate-limit state with a cheap call
func (c *Client) probe(ctx context.Context) error {
	_, err := c.Call(ctx, c.probeResource, http.MethodGet)
	return err
}

// awaitWindow waits while another request is sitting out a rate-limit window
func (c *Client) awaitWindow(ctx context.Context) error {
	wait := c.tracker.heldFor(c.now())
	if wait <= 0 {
		return nil
	}

	c.logger.Debug().Dur("wait", wait).Msg("Waiting for desk rate limit window")
	if err := c.sleep(ctx, wait); err != nil {
		return fmt.Errorf("waiting for rate limit reset: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
