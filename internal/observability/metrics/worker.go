package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	snapshotTotal    *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	lifecycleGroups  *prometheus.GaugeVec
	reconciliations  *prometheus.GaugeVec
	eventsTotal      *prometheus.CounterVec
	eventLag         prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	snapshotTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "snapshot_runs_total",
			Help:      "Status snapshot runs by result.",
		},
		[]string{"service", "status"},
	)
	snapshotDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "snapshot_duration_seconds",
			Help:        "Duration of one status snapshot.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	lifecycleGroups := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "groups",
			Help:        "Groups per lifecycle status at the last snapshot.",
			ConstLabels: constLabels,
		},
		[]string{"lifecycle"},
	)
	reconciliations := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "reconciliations",
			Help:        "Groups per reconciliation outcome at the last snapshot.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "upload_events_total",
			Help:      "Consumed upload batch events by result.",
		},
		[]string{"service", "status"},
	)
	eventLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "upload_event_lag_seconds",
			Help:        "Delay between queueing a batch and consuming its event.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(snapshotTotal, snapshotDuration, lifecycleGroups, reconciliations, eventsTotal, eventLag)

	return &WorkerMetrics{
		registry:         registry,
		snapshotTotal:    snapshotTotal,
		snapshotDuration: snapshotDuration,
		lifecycleGroups:  lifecycleGroups,
		reconciliations:  reconciliations,
		eventsTotal:      eventsTotal,
		eventLag:         eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) FinishSnapshot(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.snapshotTotal.WithLabelValues(service, status).Inc()
	m.snapshotDuration.Observe(duration.Seconds())
}

func (m *WorkerMetrics) SetLifecycleCounts(byLifecycle map[string]int) {
	m.lifecycleGroups.Reset()
	for lifecycle, n := range byLifecycle {
		m.lifecycleGroups.WithLabelValues(lifecycle).Set(float64(n))
	}
}

func (m *WorkerMetrics) SetReconciliationCounts(passed, failed, pending int) {
	m.reconciliations.WithLabelValues("passed").Set(float64(passed))
	m.reconciliations.WithLabelValues("failed").Set(float64(failed))
	m.reconciliations.WithLabelValues("pending").Set(float64(pending))
}

func (m *WorkerMetrics) FinishEvent(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventsTotal.WithLabelValues(service, status).Inc()
}

func (m *WorkerMetrics) ObserveEventLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.Observe(lag.Seconds())
}
