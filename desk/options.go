package desk

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	logger           zerolog.Logger
	timeout          time.Duration
	legacyTLS        bool
	retryPolicy      RetryPolicy
	nearingThreshold int
	probeResource    string
	metrics          *Metrics
	pacer            *rate.Limiter
	transport        Transport
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		logger:           zerolog.Nop(),
		timeout:          30 * time.Second,
		retryPolicy:      DefaultRetryPolicy,
		nearingThreshold: DefaultNearingThreshold,
		probeResource:    "groups",
	}
}

// WithLogger sets the logger for request, rate-limit and failure events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLegacyTLS also accepts TLS 1.0 and 1.1 when negotiating connections.
// Only needed for desk instances behind outdated TLS terminators.
func WithLegacyTLS() Option {
	return func(o *clientOptions) {
		o.legacyTLS = true
	}
}

// WithRetryPolicy sets the policy applied to 429 responses.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *clientOptions) {
		if policy != nil {
			o.retryPolicy = policy
		}
	}
}

// WithNearingThreshold sets the default percentage used by IsNearingAPILimits
// and by the "nearing" log event.
func WithNearingThreshold(percent int) Option {
	return func(o *clientOptions) {
		if percent > 0 && percent <= 100 {
			o.nearingThreshold = percent
		}
	}
}

// WithProbeResource sets the resource requested to load rate-limit state
// when none has been observed yet.
func WithProbeResource(resource string) Option {
	return func(o *clientOptions) {
		if resource != "" {
			o.probeResource = resource
		}
	}
}

// WithMetrics records Prometheus metrics for every exchange.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// WithRequestsPerSecond paces outgoing requests on the client side.
func WithRequestsPerSecond(rps float64, burst int) Option {
	return func(o *clientOptions) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTransport replaces the HTTP transport. Credentials, timeout and TLS
// options are not applied to a custom transport.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) {
		if t != nil {
			o.transport = t
		}
	}
}
