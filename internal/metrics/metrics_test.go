package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpdateCheck(OutcomeUpdate, time.Now())
	m.ObserveUpdateCheck(OutcomeUpdate, time.Now())
	m.ObserveUpdateCheck(OutcomeUnentitled, time.Now())
	m.IncrementConfig("updater", nil)
	m.IncrementConfig("updater", errors.New("boom"))
	m.IncrementRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpdateChecks.WithLabelValues(OutcomeUpdate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdateChecks.WithLabelValues(OutcomeUnentitled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigRequests.WithLabelValues("updater", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpdateCheck(OutcomeNone, time.Now())
		m.IncrementConfig("api", nil)
		m.IncrementRateLimited()
		m.ObserveEndpointLatency("/x", time.Second)
	})
}
