package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GCMetrics tracks metrics related to the image-store scratch directory
// sweeper (pkg/imagestore/gc).
//
// Metrics:
//   - messageproxy_gateway_gc_sweeps_total: Total sweep runs
//   - messageproxy_gateway_gc_sweep_duration_seconds: Sweep duration
//   - messageproxy_gateway_gc_removed_total: Total directories removed
type GCMetrics struct {
	sweepsTotal    prometheus.Counter
	sweepDuration  prometheus.Histogram
	removedTotal   prometheus.Counter
}

// NewGCMetrics creates and registers image-store GC metrics with the provided registry.
func NewGCMetrics(cfg *Config, registry *prometheus.Registry) *GCMetrics {
	gm := &GCMetrics{
		sweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gc_sweeps_total",
				Help:      "Total number of image-store GC sweep runs",
			},
		),

		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gc_sweep_duration_seconds",
				Help:      "Duration of image-store GC sweeps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		removedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "gc_removed_total",
				Help:      "Total number of stale extraction directories removed",
			},
		),
	}

	registry.MustRegister(
		gm.sweepsTotal,
		gm.sweepDuration,
		gm.removedTotal,
	)

	return gm
}

// RecordSweep records the outcome of a single sweep run.
func (gm *GCMetrics) RecordSweep(duration time.Duration, removed int) {
	gm.sweepsTotal.Inc()
	gm.sweepDuration.Observe(duration.Seconds())
	if removed > 0 {
		gm.removedTotal.Add(float64(removed))
	}
}
