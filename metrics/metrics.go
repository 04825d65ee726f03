// Package metrics wires the filesystem core's counters into Prometheus.
// Each *Filesystem owns a private Metrics (and registry), so multiple
// in-process filesystems never collide on a shared default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and gauges the core updates as operations
// run. All fields are safe for concurrent use (the prometheus client
// types are).
type Metrics struct {
	registry *prometheus.Registry

	OpsTotal        *prometheus.CounterVec
	LockWaitSeconds *prometheus.HistogramVec
	BytesAllocated  prometheus.Gauge
	OpenFiles       prometheus.Gauge
}

// New creates a Metrics with its own private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memfs",
			Name:      "operations_total",
			Help:      "Count of filesystem operations by name and result.",
		}, []string{"op", "result"}),
		LockWaitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memfs",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting to acquire an entry or ordering lock.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"lock"}),
		BytesAllocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memfs",
			Name:      "bytes_allocated",
			Help:      "Bytes currently allocated across all file blocks.",
		}),
		OpenFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memfs",
			Name:      "open_files",
			Help:      "Number of currently open file handles.",
		}),
	}

	reg.MustRegister(m.OpsTotal, m.LockWaitSeconds, m.BytesAllocated, m.OpenFiles)
	return m
}

// Registry returns the Prometheus gatherer a host can scrape.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveOp records the outcome of one operation.
func (m *Metrics) ObserveOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.OpsTotal.WithLabelValues(op, result).Inc()
}
