package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kirillkom/document-status-dashboard/internal/config"
	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
	"github.com/kirillkom/document-status-dashboard/internal/observability/metrics"
)

const serviceName = "dashboard-api"

// LocalFileServer serves objects of the development store behind signed
// links.
type LocalFileServer interface {
	Verify(ref domain.ObjectRef, expires, sig string) error
	Open(ctx context.Context, ref domain.ObjectRef) (io.ReadCloser, error)
}

type Dependencies struct {
	Dashboard  ports.DashboardService
	Uploads    ports.UploadService
	Downloads  ports.DownloadService
	Overrides  ports.OverrideService
	LocalFiles LocalFileServer
	Metrics    *metrics.HTTPServerMetrics
}

type Router struct {
	cfg  config.Config
	deps Dependencies
}

func NewRouter(cfg config.Config, deps Dependencies) *Router {
	return &Router{cfg: cfg, deps: deps}
}

func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", rt.healthz).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", rt.openAPI).Methods(http.MethodGet)
	if rt.deps.Metrics != nil {
		r.Handle("/metrics", rt.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status/rows", rt.listRows).Methods(http.MethodGet)
	v1.HandleFunc("/status/overview", rt.overview).Methods(http.MethodGet)
	v1.HandleFunc("/status/overview.xlsx", rt.exportOverview).Methods(http.MethodGet)
	v1.HandleFunc("/status/snapshot", rt.snapshot).Methods(http.MethodGet)
	v1.HandleFunc("/status/groups/{customerId}", rt.groupDetail).Methods(http.MethodGet)

	v1.HandleFunc("/uploads", rt.submitUpload).Methods(http.MethodPost)
	v1.HandleFunc("/uploads/init", rt.initUpload).Methods(http.MethodPost)
	v1.HandleFunc("/uploads/finalize", rt.finalizeUpload).Methods(http.MethodPost)

	v1.HandleFunc("/files/download-url", rt.downloadURL).Methods(http.MethodGet)
	if rt.deps.LocalFiles != nil {
		v1.PathPrefix("/files/local/").HandlerFunc(rt.serveLocalFile).Methods(http.MethodGet)
	}

	v1.HandleFunc("/overrides", rt.listOverrides).Methods(http.MethodGet)
	v1.HandleFunc("/overrides/{kind}/{groupKey}", rt.setOverride).Methods(http.MethodPut)
	v1.HandleFunc("/overrides/{kind}/{groupKey}", rt.deleteOverride).Methods(http.MethodDelete)

	var handler http.Handler = r
	if validator, err := newRequestValidator(); err != nil {
		slog.Error("openapi_validator_disabled", "error", err)
	} else {
		handler = validator.middleware(handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(OpenAPISpec())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
