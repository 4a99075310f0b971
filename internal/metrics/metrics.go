// Package metrics provides Prometheus instruments for the log pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics captures flush, delivery, persistence and queue-depth
// telemetry for one pipeline instance.
type PipelineMetrics struct {
	flushes      *prometheus.CounterVec
	delivered    prometheus.Counter
	requeued     prometheus.Counter
	dropped      prometheus.Counter
	persisted    prometheus.Counter
	persistFails prometheus.Counter
	pendingDepth prometheus.Gauge
	storageIO    *prometheus.HistogramVec
}

// NewPipelineMetrics constructs instruments registered against the supplied
// registerer. A nil registerer falls back to the default registry.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PipelineMetrics{
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "logpipe",
				Subsystem: "sendqueue",
				Name:      "flushes_total",
				Help:      "Total number of flush attempts by result.",
			},
			[]string{"result"},
		),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "sendqueue",
			Name:      "delivered_entries_total",
			Help:      "Total number of entries delivered to the collector.",
		}),
		requeued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "sendqueue",
			Name:      "requeued_entries_total",
			Help:      "Total number of entries re-queued after a failed delivery.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "sendqueue",
			Name:      "dropped_entries_total",
			Help:      "Total number of entries dropped by the pending-queue cap.",
		}),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "persist",
			Name:      "entries_total",
			Help:      "Total number of entries written to the durable buffer.",
		}),
		persistFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "persist",
			Name:      "failures_total",
			Help:      "Total number of persistence failures swallowed by the store.",
		}),
		pendingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logpipe",
			Subsystem: "sendqueue",
			Name:      "pending_depth",
			Help:      "Current number of entries awaiting delivery.",
		}),
		storageIO: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "logpipe",
				Subsystem: "storage",
				Name:      "io_seconds",
				Help:      "Histogram of durable store read/write latencies.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(
		m.flushes, m.delivered, m.requeued, m.dropped,
		m.persisted, m.persistFails, m.pendingDepth, m.storageIO,
	)
	return m
}

// ObserveFlush records one flush attempt and its outcome.
func (m *PipelineMetrics) ObserveFlush(ok bool, batchSize int) {
	if m == nil {
		return
	}
	if ok {
		m.flushes.WithLabelValues("ok").Inc()
		m.delivered.Add(float64(batchSize))
		return
	}
	m.flushes.WithLabelValues("error").Inc()
}

// ObserveRequeue records entries folded back into the pending queue and any
// overflow dropped by the cap.
func (m *PipelineMetrics) ObserveRequeue(kept, droppedCount int) {
	if m == nil {
		return
	}
	m.requeued.Add(float64(kept))
	if droppedCount > 0 {
		m.dropped.Add(float64(droppedCount))
	}
}

// SetPendingDepth records the current pending-queue length.
func (m *PipelineMetrics) SetPendingDepth(n int) {
	if m == nil {
		return
	}
	m.pendingDepth.Set(float64(n))
}

// ObservePersist records one durable-buffer write or its failure.
func (m *PipelineMetrics) ObservePersist(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.persistFails.Inc()
		return
	}
	m.persisted.Inc()
}

// ObserveWrite implements the storage MetricsHook.
func (m *PipelineMetrics) ObserveWrite(elapsed time.Duration, _ int) {
	if m == nil {
		return
	}
	m.storageIO.WithLabelValues("write").Observe(elapsed.Seconds())
}

// ObserveRead implements the storage MetricsHook.
func (m *PipelineMetrics) ObserveRead(elapsed time.Duration, _ int) {
	if m == nil {
		return
	}
	m.storageIO.WithLabelValues("read").Observe(elapsed.Seconds())
}
