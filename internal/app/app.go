// Package app wires configuration into a ready Fiber application. Both entry points
// (the monolithic server and the Functions custom handler) build through it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"docviewer/internal/config"
	"docviewer/internal/database"
	"docviewer/internal/database/migration"
	"docviewer/internal/extract"
	handlers "docviewer/internal/http/handler"
	"docviewer/internal/http/middleware"
	"docviewer/internal/metrics"
	"docviewer/internal/repository"
	"docviewer/internal/repository/postgres"
	"docviewer/internal/service"
	"docviewer/internal/session"
	"docviewer/internal/sharepoint"
	"docviewer/internal/storage"
	"docviewer/internal/textcache"
)

// App is a wired application. Close releases what New opened.
type App struct {
	Fiber  *fiber.App
	Config *config.AppConfig
	Logger *slog.Logger

	db *sql.DB
}

// backend is the storage side of the wiring.
type backend struct {
	store    storage.ObjectStore
	layout   textcache.Layout
	sessions *session.Manager
	auth     handlers.Authenticator
}

// New builds the object store selected by cfg.Backend, the optional extraction log,
// the services and the HTTP stack.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	maxUpload, err := cfg.MaxUploadSizeBytes()
	if err != nil {
		return nil, err
	}

	be, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	var (
		db     *sql.DB
		events repository.ExtractionEventRepository = repository.Nop{}
	)
	if cfg.Database.Enabled() {
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		events = postgres.NewExtractionEventPostgres(db)
	}

	cache := textcache.New(be.store, be.layout, logger)
	docSvc := service.NewDocumentService(service.DocumentDeps{
		Store:          be.store,
		Cache:          cache,
		Logger:         logger,
		MaxUploadSize:  maxUpload,
		DownloadExpiry: cfg.DownloadURLExpiry(),
	})
	textSvc := service.NewTextService(service.TextDeps{
		Store:      be.store,
		Cache:      cache,
		Dispatcher: extract.NewDispatcher(logger, cfg.Extract.PDFPassword),
		Events:     events,
		Metrics:    m,
		Logger:     logger,
		Backend:    cfg.Backend,
		ScratchDir: cfg.Extract.ScratchDir,
	})

	app := fiber.New(fiber.Config{
		AppName:      "docviewer",
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart framing on top of the file itself.
		BodyLimit: int(maxUpload) + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(logger))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.CORS(cfg.CORSAllowOrigins))

	handlers.RegisterRoutes(app, handlers.Deps{
		Backend:   cfg.Backend,
		DB:        db,
		Documents: docSvc,
		Texts:     textSvc,
		Sessions:  be.sessions,
		Auth:      be.auth,
		Logger:    logger,
		Gatherer:  reg,
	})

	logger.InfoContext(ctx, "application wired",
		"backend", cfg.Backend, "database", db != nil, "max_upload_bytes", maxUpload)

	return &App{Fiber: app, Config: cfg, Logger: logger, db: db}, nil
}

func newBackend(ctx context.Context, cfg *config.AppConfig) (backend, error) {
	switch cfg.Backend {
	case config.BackendBlob:
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return backend{}, fmt.Errorf("initialize object storage: %w", err)
		}
		return backend{store: store, layout: textcache.BlobLayout{}}, nil

	case config.BackendSite:
		client, err := sharepoint.New(cfg.SharePoint)
		if err != nil {
			return backend{}, fmt.Errorf("initialize sharepoint client: %w", err)
		}
		sessions, err := session.NewManager(cfg.Session)
		if err != nil {
			return backend{}, fmt.Errorf("initialize sessions: %w", err)
		}
		return backend{
			store:    storage.NewSharePoint(client, cfg.SharePoint.Library, cfg.SharePoint.Folders),
			layout:   textcache.SiteLayout{},
			sessions: sessions,
			auth:     client,
		}, nil

	case config.BackendMemory:
		return backend{store: storage.NewMemory(), layout: textcache.BlobLayout{}}, nil
	}
	return backend{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// Close stops the HTTP server and closes the database.
func (a *App) Close(ctx context.Context) error {
	err := a.Fiber.ShutdownWithContext(ctx)
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
