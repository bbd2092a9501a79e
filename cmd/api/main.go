package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/document-status-dashboard/internal/adapters/http"
	"github.com/kirillkom/document-status-dashboard/internal/bootstrap"
	"github.com/kirillkom/document-status-dashboard/internal/config"
	"github.com/kirillkom/document-status-dashboard/internal/observability/logging"
	"github.com/kirillkom/document-status-dashboard/internal/observability/metrics"
)

const serviceName = "dashboard-api"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logging.NewJSONLogger(serviceName, "info").Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Dependencies{
		Dashboard:  app.Dashboard,
		Uploads:    app.Uploads,
		Downloads:  app.Downloads,
		Overrides:  app.Overrides,
		LocalFiles: app.LocalFiles,
		Metrics:    metrics.NewHTTPServerMetrics(serviceName),
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
