package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callpulse/internal/config"
	apierrors "callpulse/internal/errors"
	"callpulse/internal/infrastructure"
	mw "callpulse/internal/middleware"
	"callpulse/internal/services"
	httptransport "callpulse/internal/transport/http"
)

// Version information set at build time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Application holds all initialized services and the HTTP server.
// Dependencies flow one way: config -> infrastructure -> services -> handlers.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	dataService   *services.DataService
	reportService *services.ReportService
	healthService *services.HealthService

	errorHandler *apierrors.ErrorHandler
	validator    *mw.ValidationMiddleware

	dashboardHandler *httptransport.DashboardHandler
	recordsHandler   *httptransport.RecordsHandler
	metaHandler      *httptransport.MetaHandler
	healthHandler    *httptransport.HealthHandler

	registry *prometheus.Registry
	server   *http.Server
	router   chi.Router
}

// New creates a fully wired Application from configuration.
func New(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewMetrics(registry)

	app := &Application{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
	}

	app.initServices()
	app.initHandlers()
	app.router = app.setupRouter()

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("application initialized",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("data_dir", cfg.GetDataDir()),
	)
	return app, nil
}

func (app *Application) initServices() {
	app.dataService = services.NewDataService(app.config, app.metrics, infrastructure.WithComponent(app.logger, "data"))
	app.reportService = services.NewReportService(app.dataService, infrastructure.WithComponent(app.logger, "reports"))
	app.healthService = services.NewHealthService(Version, BuildTime, app.config.GetDataDir(), app.dataService,
		infrastructure.WithComponent(app.logger, "health"))
}

func (app *Application) initHandlers() {
	app.errorHandler = apierrors.NewErrorHandler(app.logger, app.config.Logging.Level == "debug")
	app.validator = mw.NewValidationMiddleware(app.logger, app.errorHandler)

	app.dashboardHandler = httptransport.NewDashboardHandler(app.reportService, app.validator,
		infrastructure.WithComponent(app.logger, "dashboard"), app.errorHandler)
	app.recordsHandler = httptransport.NewRecordsHandler(app.reportService, app.validator,
		infrastructure.WithComponent(app.logger, "records"), app.errorHandler)
	app.metaHandler = httptransport.NewMetaHandler(app.dataService, app.reportService,
		infrastructure.WithComponent(app.logger, "meta"), app.errorHandler)
	app.healthHandler = httptransport.NewHealthHandler(app.healthService,
		infrastructure.WithComponent(app.logger, "healthcheck"))
}

func (app *Application) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RealIP)
	r.Use(mw.StructuredLogger(app.logger))
	r.Use(mw.Recoverer(app.logger))
	r.Use(mw.SecurityHeaders)
	r.Use(mw.StripSlashes)
	r.Use(mw.Compress(5))
	r.Use(mw.Metrics(app.metrics))

	if app.config.Security.EnableCORS {
		r.Use(mw.CORS(mw.CORSConfig{
			AllowedOrigins: app.config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		}))
	}
	if app.config.Security.RateLimit.Enabled {
		limiter := mw.NewRateLimiter(app.config.Security.RateLimit.RPS, app.config.Security.RateLimit.Burst, app.logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(app.errorHandler.NotFound)
	r.MethodNotAllowed(app.errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.Timeout(30*time.Second, app.logger))
		r.Mount("/dashboard", app.dashboardHandler.Routes())
		r.Mount("/records", app.recordsHandler.Routes())
		r.Mount("/export", app.recordsHandler.ExportRoutes())
		app.metaHandler.Routes(r)
	})

	r.Get("/healthz", app.healthHandler.Check)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	app.setupStaticRoutes(r)
	return r
}

// setupStaticRoutes serves the dashboard frontend when a web directory exists.
func (app *Application) setupStaticRoutes(r chi.Router) {
	webDir := app.config.GetWebDir()
	if info, err := os.Stat(webDir); err != nil || !info.IsDir() {
		app.logger.Warn("web directory not found, static serving disabled",
			slog.String("path", webDir))
		return
	}

	fileServer := http.FileServer(http.Dir(webDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(webDir, filepath.Clean(req.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			// SPA routing: unknown paths fall back to the index page.
			http.ServeFile(w, req, filepath.Join(webDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, req)
	})
}

// Router exposes the configured handler tree, primarily for tests.
func (app *Application) Router() chi.Router {
	return app.router
}

// Start warms the data cache and begins serving HTTP.
func (app *Application) Start(ctx context.Context) error {
	if _, err := app.dataService.Table(ctx); err != nil {
		// Serve anyway; the dashboard reports the load failure per request.
		app.logger.Warn("initial data load failed",
			slog.String("error", err.Error()))
	}

	app.logger.Info("server starting", slog.String("addr", app.server.Addr))
	if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down within the configured timeout.
func (app *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	app.logger.Info("server shutting down")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run starts the application and blocks until an interrupt signal arrives.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	app, err := New(cfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		app.logger.Info("signal received", slog.String("signal", sig.String()))
		cancel()
		return app.Stop()
	}
}
