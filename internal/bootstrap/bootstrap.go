package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	httpadapter "github.com/kirillkom/document-status-dashboard/internal/adapters/http"
	"github.com/kirillkom/document-status-dashboard/internal/config"
	"github.com/kirillkom/document-status-dashboard/internal/core/ports"
	"github.com/kirillkom/document-status-dashboard/internal/core/status"
	"github.com/kirillkom/document-status-dashboard/internal/core/usecase"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/extractor/fileinspect"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/supabase"
)

type App struct {
	Config config.Config

	Events *nats.Events

	Dashboard  *usecase.DashboardUseCase
	Uploads    *usecase.UploadUseCase
	Downloads  *usecase.DownloadUseCase
	Overrides  *usecase.OverrideUseCase
	LocalFiles httpadapter.LocalFileServer

	closers []func()
}

type backend struct {
	source   ports.StatusSource
	registry ports.CustomerRegistry
	queue    ports.UploadQueue
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg}

	guard := resilience.NewGuard(resilience.Config{
		Enabled:      cfg.BreakerEnabled,
		MinRequests:  uint32(cfg.BreakerMinRequests),
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout,
	}, logger)

	var db *sql.DB
	if cfg.NeedsPostgres() {
		opened, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = opened
		app.closers = append(app.closers, func() { _ = db.Close() })
	}

	var supa *supabase.Client
	if cfg.Backend == config.BackendSupabase || cfg.ObjectStorage == config.StorageSupabase {
		supa = supabase.New(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, supabase.Options{Guard: guard})
	}

	be := newBackend(cfg, db, supa, guard)

	storage, err := newObjectStorage(cfg, supa, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	overrideStore, err := newOverrideStore(ctx, cfg, db, guard)
	if err != nil {
		app.Close()
		return nil, err
	}
	overrides, err := usecase.NewOverrideUseCase(ctx, overrideStore)
	if err != nil {
		app.Close()
		return nil, err
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher ports.EventPublisher
	if cfg.NATSEnabled {
		events, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{Guard: guard, Logger: logger})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event queue: %w", err)
		}
		app.Events = events
		publisher = events
		app.closers = append(app.closers, events.Close)
	}

	app.Overrides = overrides
	app.Dashboard = usecase.NewDashboardUseCase(be.source, overrides, status.NewReconciler(rules))
	app.Uploads = usecase.NewUploadUseCase(be.registry, storage, be.queue, publisher, fileinspect.New(), logger, usecase.UploadOptions{
		Workers:      cfg.UploadWorkers,
		MaxFileBytes: cfg.MaxUploadBytes,
	})
	app.Downloads = usecase.NewDownloadUseCase(storage, projectHost(cfg.SupabaseURL), cfg.SignedURLTTL)

	logger.Info("bootstrap_ready",
		"backend", cfg.Backend,
		"object_storage", cfg.ObjectStorage,
		"override_store", cfg.OverrideStore,
		"events", cfg.NATSEnabled,
	)
	return app, nil
}

func newBackend(cfg config.Config, db *sql.DB, supa *supabase.Client, guard *resilience.Guard) backend {
	if cfg.Backend == config.BackendSupabase {
		registry := supabase.NewRegistry(supa)
		return backend{
			source:   supabase.NewStatusSource(supa),
			registry: registry,
			queue:    registry,
		}
	}
	return backend{
		source:   postgres.NewStatusSource(db, guard),
		registry: postgres.NewCustomerRegistry(db, guard),
		queue:    postgres.NewUploadQueue(db, guard),
	}
}

func newObjectStorage(cfg config.Config, supa *supabase.Client, app *App) (ports.ObjectStorage, error) {
	if cfg.ObjectStorage == config.StorageSupabase {
		return supabase.NewStorage(supa, cfg.SupabaseBucket), nil
	}
	store, err := localfs.New(localfs.Options{
		BasePath: cfg.StoragePath,
		Bucket:   cfg.SupabaseBucket,
		LinkBase: cfg.PublicBaseURL + "/v1/files/local",
		Secret:   cfg.StorageSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	app.LocalFiles = store
	return store, nil
}

func newOverrideStore(ctx context.Context, cfg config.Config, db *sql.DB, guard *resilience.Guard) (ports.OverrideStore, error) {
	if cfg.OverrideStore == config.OverrideStorePostgres {
		store := postgres.NewOverrideStore(db, guard)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure override schema: %w", err)
		}
		return store, nil
	}
	store, err := localfs.NewOverrideFile(cfg.OverrideFile)
	if err != nil {
		return nil, fmt.Errorf("init override file: %w", err)
	}
	return store, nil
}

// projectHost limits full storage URLs to the configured project.
func projectHost(supabaseURL string) string {
	if supabaseURL == "" {
		return ""
	}
	u, err := url.Parse(supabaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
