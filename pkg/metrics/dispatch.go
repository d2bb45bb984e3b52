package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records the outcome of fire-and-forget side-effect tasks.
type DispatchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	depth    prometheus.Gauge
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	m := &DispatchMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_task_duration_seconds",
			Help:    "Duration of dispatched side-effect tasks in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_task_success_total",
			Help: "Dispatched tasks that completed without error.",
		}, []string{"task"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_task_failure_total",
			Help: "Dispatched tasks that returned an error or panicked.",
		}, []string{"task"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_task_dropped_total",
			Help: "Tasks rejected because the queue was full or closed.",
		}, []string{"task"}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Tasks waiting in the dispatch queue.",
		}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.dropped, m.depth)
	return m
}

// ObserveDuration records the duration for the named task.
func (m *DispatchMetrics) ObserveDuration(task string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(task)).Observe(duration.Seconds())
}

func (m *DispatchMetrics) IncSuccess(task string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(task)).Inc()
}

func (m *DispatchMetrics) IncFailure(task string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(task)).Inc()
}

func (m *DispatchMetrics) IncDropped(task string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(task)).Inc()
}

// SetQueueDepth publishes the current number of queued tasks.
func (m *DispatchMetrics) SetQueueDepth(depth int) {
	if m == nil || m.depth == nil {
		return
	}
	m.depth.Set(float64(depth))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
