package logsink

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Retries     *prometheus.CounterVec
	CircuitOpen prometheus.Gauge
}

// NewMetrics registers sink metrics with reg (default registry when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_sink_operations_total",
			Help: "Log sink operations, labeled by operation, table and result",
		}, []string{"op", "table", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatepass_sink_operation_duration_seconds",
			Help:    "Duration of log sink operations including retries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		Retries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_sink_retries_total",
			Help: "Log sink attempts that were retried, labeled by operation",
		}, []string{"op"}),
		CircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "gatepass_sink_circuit_open",
			Help: "1 while the log sink circuit breaker is open",
		}),
	}
}

func (m *Metrics) observe(op string, table Table, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(op, table.Name, result).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) retried(op string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(op).Inc()
}

func (m *Metrics) setCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
