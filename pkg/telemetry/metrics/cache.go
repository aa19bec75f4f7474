package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegistryCacheMetrics tracks lookup performance for the image
// extraction registry (pkg/imagestore/registry).
//
// Metrics:
//   - messageproxy_gateway_registry_hits_total: Total digest lookup hits
//   - messageproxy_gateway_registry_misses_total: Total digest lookup misses
type RegistryCacheMetrics struct {
	hitsTotal   prometheus.Counter
	missesTotal prometheus.Counter
}

// NewRegistryCacheMetrics creates and registers registry cache metrics with the provided registry.
func NewRegistryCacheMetrics(cfg *Config, registry *prometheus.Registry) *RegistryCacheMetrics {
	rm := &RegistryCacheMetrics{
		hitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "registry_hits_total",
				Help:      "Total number of extraction registry lookup hits",
			},
		),

		missesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "registry_misses_total",
				Help:      "Total number of extraction registry lookup misses",
			},
		),
	}

	registry.MustRegister(
		rm.hitsTotal,
		rm.missesTotal,
	)

	return rm
}

// RecordHit records a registry lookup hit.
func (rm *RegistryCacheMetrics) RecordHit() {
	rm.hitsTotal.Inc()
}

// RecordMiss records a registry lookup miss.
func (rm *RegistryCacheMetrics) RecordMiss() {
	rm.missesTotal.Inc()
}
