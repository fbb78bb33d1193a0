// Package metrics owns the Prometheus registry every component registers
// into, and the process-wide series that describe the running build.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is a private Prometheus registry with Go runtime and process
// collectors already registered.
type Registry struct {
	*prometheus.Registry

	BuildInfo *prometheus.GaugeVec
	Variant   *prometheus.GaugeVec
}

// NewRegistry creates the registry and the build series.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		Registry: reg,
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gatepass_build_info",
			Help: "Constant 1, labeled by version and log sink driver",
		}, []string{"version", "sink_driver"}),
		Variant: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gatepass_variant_enabled",
			Help: "1 when the named credential variant option is enabled",
		}, []string{"option"}),
	}
	reg.MustRegister(r.BuildInfo, r.Variant)
	return r
}

// SetBuildInfo records the running version and sink driver.
func (r *Registry) SetBuildInfo(version, sinkDriver string) {
	r.BuildInfo.WithLabelValues(version, sinkDriver).Set(1)
}

// SetVariant records whether a variant option is enabled.
func (r *Registry) SetVariant(option string, enabled bool) {
	v := 0.0
	if enabled {
		v = 1
	}
	r.Variant.WithLabelValues(option).Set(v)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}
