package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry(), "inventory")

	m.ObserveOperation("reserve", "success")
	m.ObserveOperation("reserve", "success")
	m.ObserveOperation("reserve", "insufficient")
	m.PublishFailed("inventory.reserved")
	m.CASConflict()
	m.WorkerAcquired()
	m.WorkerAcquired()
	m.WorkerReleased()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("reserve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("reserve", "insufficient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishFailures.WithLabelValues("inventory.reserved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("get", "success")
		m.PublishFailed("x")
		m.CASConflict()
		m.WorkerAcquired()
		m.WorkerReleased()
	})
}
