package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dsd"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	overviewGroups       *prometheus.GaugeVec
	uploadFilesTotal     *prometheus.CounterVec
	uploadBatchesTotal   *prometheus.CounterVec
	reconciliationsTotal *prometheus.CounterVec
	downloadLinksTotal   *prometheus.CounterVec
	exportsTotal         *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	overviewGroups := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "overview_groups",
			Help:      "Groups returned by the last overview request, by lifecycle status.",
		},
		[]string{"service", "lifecycle"},
	)
	uploadFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "files_total",
			Help:      "Uploaded files by outcome.",
		},
		[]string{"service", "outcome"},
	)
	uploadBatchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "batches_total",
			Help:      "Upload batches by flow and outcome.",
		},
		[]string{"service", "flow", "outcome"},
	)
	reconciliationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "reconciliations_total",
			Help:      "Net-income reconciliations rendered in detail views, by outcome.",
		},
		[]string{"service", "outcome"},
	)
	downloadLinksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "files",
			Name:      "download_links_total",
			Help:      "Signed download links issued, by outcome.",
		},
		[]string{"service", "outcome"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "exports_total",
			Help:      "Overview exports by format.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		overviewGroups,
		uploadFilesTotal,
		uploadBatchesTotal,
		reconciliationsTotal,
		downloadLinksTotal,
		exportsTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		overviewGroups:       overviewGroups,
		uploadFilesTotal:     uploadFilesTotal,
		uploadBatchesTotal:   uploadBatchesTotal,
		reconciliationsTotal: reconciliationsTotal,
		downloadLinksTotal:   downloadLinksTotal,
		exportsTotal:         exportsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses identifiers so label cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/status/groups/"):
		return "/v1/status/groups/{customer_id}"
	case strings.HasPrefix(path, "/v1/overrides/"):
		return "/v1/overrides/{kind}/{group_key}"
	case strings.HasPrefix(path, "/v1/files/local/"):
		return "/v1/files/local/{object}"
	default:
		return path
	}
}

// RecordOverview replaces the per-lifecycle gauge with the given counts.
func (m *HTTPServerMetrics) RecordOverview(service string, byLifecycle map[string]int) {
	m.overviewGroups.DeletePartialMatch(prometheus.Labels{"service": service})
	for lifecycle, n := range byLifecycle {
		m.overviewGroups.WithLabelValues(service, lifecycle).Set(float64(n))
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, flow string, stored, failed int) {
	if stored > 0 {
		m.uploadFilesTotal.WithLabelValues(service, "stored").Add(float64(stored))
	}
	if failed > 0 {
		m.uploadFilesTotal.WithLabelValues(service, "failed").Add(float64(failed))
	}
	outcome := "accepted"
	if stored == 0 {
		outcome = "rejected"
	}
	m.uploadBatchesTotal.WithLabelValues(service, flow, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordReconciliation(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.reconciliationsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordDownloadLink(service string, issued bool) {
	outcome := "issued"
	if !issued {
		outcome = "empty"
	}
	m.downloadLinksTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, format string) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
