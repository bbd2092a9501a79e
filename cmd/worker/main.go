package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/bootstrap"
	"github.com/kirillkom/document-status-dashboard/internal/config"
	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/scheduler"
	"github.com/kirillkom/document-status-dashboard/internal/observability/logging"
	"github.com/kirillkom/document-status-dashboard/internal/observability/metrics"
)

const serviceName = "dashboard-worker"

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

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()

	snapshots, err := scheduler.NewSnapshotScheduler(cfg.SnapshotCron, serviceName, app.Dashboard, workerMetrics, logger)
	if err != nil {
		logger.Error("snapshot_scheduler_invalid", "error", err)
		os.Exit(1)
	}
	if err := snapshots.RunOnce(ctx); err != nil {
		logger.Warn("initial_snapshot_failed", "error", err)
	}
	if err := snapshots.Start(); err != nil {
		logger.Error("snapshot_scheduler_failed", "error", err)
		os.Exit(1)
	}
	defer snapshots.Stop()

	if app.Events != nil {
		logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
		err = app.Events.SubscribeUploadQueued(ctx, func(_ context.Context, event domain.UploadQueuedEvent) error {
			if !event.QueuedAt.IsZero() {
				workerMetrics.ObserveEventLag(time.Since(event.QueuedAt))
			}
			logger.Info("upload_batch_queued",
				"batch_id", event.BatchID,
				"customer_id", event.CustomerID,
				"role", event.RoleLabel,
				"files", event.FileCount,
			)
			workerMetrics.FinishEvent(serviceName, nil)
			return nil
		})
		if err != nil {
			logger.Error("worker_subscribe_failed", "error", err)
		}
	} else {
		logger.Info("worker_events_disabled")
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker_metrics_shutdown_failed", "error", err)
	}
}
