// Package metrics holds the Prometheus collectors for the polled agent endpoints.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Update check outcomes
const (
	OutcomeUpdate     = "update"
	OutcomeNone       = "none"
	OutcomeUnentitled = "unentitled"
	OutcomeError      = "error"
)

type Metrics struct {
	UpdateChecks        *prometheus.CounterVec
	UpdateCheckDuration prometheus.Histogram
	ConfigRequests      *prometheus.CounterVec
	RateLimited         prometheus.Counter
	EndpointLatency     *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpdateChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "licserver_update_checks_total",
			Help: "Update checks answered, by outcome",
		}, []string{"outcome"}),
		UpdateCheckDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "licserver_update_check_duration_seconds",
			Help:    "Duration of update distribution resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ConfigRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "licserver_config_requests_total",
			Help: "Synthesized configuration documents, by document kind and result",
		}, []string{"kind", "result"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "licserver_rate_limited_total",
			Help: "Agent requests rejected by the rate limiter",
		}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "licserver_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveUpdateCheck(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.UpdateChecks.WithLabelValues(outcome).Inc()
	m.UpdateCheckDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementConfig(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ConfigRequests.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}
