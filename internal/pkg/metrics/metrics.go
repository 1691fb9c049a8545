// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 汇总服务暴露的 Prometheus 指标。nil 接收者上的方法都是空操作。
type Metrics struct {
	operations      *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	casConflicts    prometheus.Counter
	inFlight        prometheus.Gauge
}

// New 在 reg 上注册所有指标
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Handled operations partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be handed to the bus.",
		}, []string{"topic"}),
		casConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cas_conflicts_total",
			Help:      "Compare-and-swap writes rejected because the record changed.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_pool_in_flight",
			Help:      "Requests currently holding a worker slot.",
		}),
	}
	reg.MustRegister(m.operations, m.publishFailures, m.casConflicts, m.inFlight)
	return m
}

func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) PublishFailed(topic string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(topic).Inc()
}

func (m *Metrics) CASConflict() {
	if m == nil {
		return
	}
	m.casConflicts.Inc()
}

func (m *Metrics) WorkerAcquired() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) WorkerReleased() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}
