package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DownloadMetrics tracks metrics related to asynchronous image content
// download jobs (pkg/downloader, spawned by pkg/endpoint/cmrunner).
//
// Metrics:
//   - messageproxy_gateway_downloads_total: Total download jobs by status
//   - messageproxy_gateway_download_duration_seconds: Download+unpack job duration
//   - messageproxy_gateway_download_bytes_total: Total bytes downloaded
type DownloadMetrics struct {
	downloadsTotal   *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	downloadBytes    prometheus.Counter
}

// NewDownloadMetrics creates and registers download metrics with the provided registry.
func NewDownloadMetrics(cfg *Config, registry *prometheus.Registry) *DownloadMetrics {
	dm := &DownloadMetrics{
		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "downloads_total",
				Help:      "Total number of image content download jobs by outcome",
			},
			[]string{"status"},
		),

		downloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "download_duration_seconds",
				Help:      "Duration of download+unpack jobs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms .. ~7min
			},
			[]string{"status"},
		),

		downloadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "download_bytes_total",
				Help:      "Total bytes downloaded across all image content jobs",
			},
		),
	}

	registry.MustRegister(
		dm.downloadsTotal,
		dm.downloadDuration,
		dm.downloadBytes,
	)

	return dm
}

// RecordDownload records the outcome of a single download job.
//
// Parameters:
//   - status: "success" or "failure"
//   - duration: total job duration, including unpacking
//   - bytesDownloaded: bytes transferred (0 on early failure)
func (dm *DownloadMetrics) RecordDownload(status string, duration time.Duration, bytesDownloaded int64) {
	dm.downloadsTotal.WithLabelValues(status).Inc()
	dm.downloadDuration.WithLabelValues(status).Observe(duration.Seconds())
	if bytesDownloaded > 0 {
		dm.downloadBytes.Add(float64(bytesDownloaded))
	}
}
