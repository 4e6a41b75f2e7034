// Package metrics exports session activity as Prometheus collectors.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the request counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors for one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RateLimitReset     prometheus.Gauge
	RateLimitUsed      prometheus.Gauge
	RateLimitRemaining prometheus.Gauge
	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New registers the collectors with reg. Sessions sharing a registry share
// the collectors. A nil reg disables metrics and returns nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	return &Metrics{
		RateLimitReset: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graw_ratelimit_reset_seconds",
			Help: "Seconds until the server rate-limit window resets, as last advertised",
		})),
		RateLimitUsed: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graw_ratelimit_used",
			Help: "Requests used in the current rate-limit window, as last advertised",
		})),
		RateLimitRemaining: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graw_ratelimit_remaining",
			Help: "Requests remaining in the current rate-limit window, as last advertised",
		})),
		Requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graw_requests_total",
			Help: "Endpoint calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"})),
		RequestDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graw_request_duration_seconds",
			Help:    "Time from dispatch to callback for endpoint calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"})),
	}
}

// register adds c to reg, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// SetRateLimit publishes the current counters.
func (m *Metrics) SetRateLimit(reset, used, remaining int) {
	if m == nil {
		return
	}
	m.RateLimitReset.Set(float64(reset))
	m.RateLimitUsed.Set(float64(used))
	m.RateLimitRemaining.Set(float64(remaining))
}

// ObserveRequest records one finished endpoint call.
func (m *Metrics) ObserveRequest(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
