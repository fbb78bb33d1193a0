package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for credential issuance and validation.
type Metrics struct {
	CredentialsIssued   *prometheus.CounterVec
	ValidationsTotal    *prometheus.CounterVec
	CredentialsRejected *prometheus.CounterVec
	VisitRowsAppended   *prometheus.CounterVec
}

// New registers invitation metrics with reg (default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_credentials_issued_total",
			Help: "Credentials issued, labeled by whether they expire",
		}, []string{"expiring"}),
		ValidationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_validations_total",
			Help: "Validation requests, labeled by mode and result",
		}, []string{"mode", "result"}),
		CredentialsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_credentials_rejected_total",
			Help: "Rejected credentials, labeled by internal reason",
		}, []string{"reason"}),
		VisitRowsAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_visit_rows_appended_total",
			Help: "Visit log rows appended, labeled by action",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncIssued(expiring bool) {
	if m == nil {
		return
	}
	if expiring {
		m.CredentialsIssued.WithLabelValues("true").Inc()
		return
	}
	m.CredentialsIssued.WithLabelValues("false").Inc()
}

func (m *Metrics) IncValidation(mode, result string) {
	if m == nil {
		return
	}
	m.ValidationsTotal.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) IncRejected(reason string) {
	if m == nil {
		return
	}
	m.CredentialsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncAppended(action string) {
	if m == nil {
		return
	}
	m.VisitRowsAppended.WithLabelValues(action).Inc()
}
