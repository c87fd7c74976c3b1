// Package metrics collects Prometheus metrics for a download run and can
// dump them in the text exposition format for node_exporter's textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/handiism/bulk-downloader/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "bulkdl"

// Collector records discovery and transfer metrics into its own registry.
//
// It implements download.Recorder. All methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	discoveredTotal prometheus.Counter
	// processedTotal counts finished transfers by status (success/fail)
	processedTotal  *prometheus.CounterVec
	attemptsTotal   prometheus.Counter
	bytesTotal      prometheus.Counter
	durationSeconds prometheus.Histogram
	// fileSizeBytes uses exponential buckets from 1KB to 1GB
	fileSizeBytes prometheus.Histogram
	inProgress    prometheus.Gauge
}

// New creates a Collector with all metrics registered in a fresh registry.
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.discoveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "discovered_total",
		Help:      "Download descriptors found by discovery or given on the command line.",
	})
	c.processedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "processed_total",
		Help:      "Finished transfers by final status.",
	}, []string{"status"})
	c.attemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "attempts_total",
		Help:      "Transfer attempts including retries.",
	})
	c.bytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "downloaded_bytes_total",
		Help:      "Bytes written by successful transfers.",
	})
	c.durationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "transfer_duration_seconds",
		Help:      "Wall time of a transfer across all of its attempts.",
		Buckets:   prometheus.DefBuckets,
	})
	c.fileSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "file_size_bytes",
		Help:      "Sizes of downloaded files.",
		Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
	})
	c.inProgress = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "in_progress",
		Help:      "Transfers currently running.",
	})

	c.registry.MustRegister(
		c.discoveredTotal,
		c.processedTotal,
		c.attemptsTotal,
		c.bytesTotal,
		c.durationSeconds,
		c.fileSizeBytes,
		c.inProgress,
	)

	// Both label values are exported even when zero.
	c.processedTotal.WithLabelValues(model.StatusSuccess.String())
	c.processedTotal.WithLabelValues(model.StatusFail.String())

	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDiscovered adds n found descriptors.
func (c *Collector) RecordDiscovered(n int) {
	c.discoveredTotal.Add(float64(n))
}

// TransferStarted marks a transfer as running.
func (c *Collector) TransferStarted() {
	c.inProgress.Inc()
}

// TransferAttempted counts one attempt.
func (c *Collector) TransferAttempted() {
	c.attemptsTotal.Inc()
}

// TransferFinished records the outcome of a transfer.
func (c *Collector) TransferFinished(s model.Summary) {
	c.inProgress.Dec()
	c.processedTotal.WithLabelValues(s.Status.String()).Inc()
	c.durationSeconds.Observe(s.Duration.Seconds())
	if !s.Failed() {
		c.bytesTotal.Add(float64(s.Bytes))
		c.fileSizeBytes.Observe(float64(s.Bytes))
	}
}

// WriteFile writes all metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
