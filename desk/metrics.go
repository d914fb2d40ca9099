package desk

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for a client. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	limit           prometheus.Gauge
	remaining       prometheus.Gauge
}

// NewMetrics creates the client metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "desk",
			Name:      "requests_total",
			Help:      "Requests sent to the desk API by method and status code",
		}, []string{"method", "code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "desk",
			Name:      "rate_limit_retries_total",
			Help:      "Requests resent after a 429 response",
		}, []string{"method"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "desk",
			Name:      "validation_rejections_total",
			Help:      "Payloads desk refused with 422",
		}, []string{"method"}),
		limit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "desk",
			Name:      "rate_limit_limit",
			Help:      "Last observed X-Rate-Limit-Limit",
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "desk",
			Name:      "rate_limit_remaining",
			Help:      "Last observed X-Rate-Limit-Remaining",
		}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "desk",
			Name:      "transport_errors_total",
			Help:      "Requests that failed before a response arrived",
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.retries, m.rejections, m.limit, m.remaining, m.transportErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) recordResponse(method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) recordRetry(method string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(method).Inc()
}

func (m *Metrics) recordRejection(method string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(method).Inc()
}

func (m *Metrics) recordTransportError(method string) {
	if m == nil {
		return
	}
	m.transportErrors.WithLabelValues(method).Inc()
}

func (m *Metrics) recordRateLimit(state RateLimitState) {
	if m == nil {
		return
	}
	m.limit.Set(float64(state.Limit))
	m.remaining.Set(float64(state.Remaining))
}
