package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dev-loop1/partial-week-converter/internal/config"
	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
	"github.com/dev-loop1/partial-week-converter/internal/infrastructure"
	customMiddleware "github.com/dev-loop1/partial-week-converter/internal/middleware"
	"github.com/dev-loop1/partial-week-converter/internal/services"
	handlers "github.com/dev-loop1/partial-week-converter/internal/transport/http"
	"github.com/dev-loop1/partial-week-converter/pkg/contracts"
)

// AppName is reported in startup logs.
const AppName = "Partial Week Converter"

// Application represents the main application container
type Application struct {
	Config            *config.Config
	Router            *chi.Mux
	Server            *http.Server
	Logger            *slog.Logger
	OTelProviders     *infrastructure.OTelProviders
	ConversionService *services.ConversionService
	HealthService     *services.HealthService
	ErrorHandler      *apierrors.ErrorHandler

	listener  net.Listener
	startTime time.Time
}

// NewApplication creates an application from cfg, building the logger from cfg.Logging.
// A nil cfg is loaded with config.Load.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load configuration", err)
		}
		cfg = loaded
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithLogger(cfg, logger)
}

// NewApplicationWithLogger creates an application that logs to logger.
func NewApplicationWithLogger(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		startTime:     time.Now(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if err := infrastructure.RegisterRuntimeMetrics(a.OTelProviders.Meter, a.startTime); err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	conversionMetrics, err := infrastructure.NewConversionMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create conversion metrics: %w", err)
	}

	a.ConversionService = services.NewConversionService(a.Config.Processing, conversionMetrics, a.OTelProviders.Tracer, a.Logger)

	a.HealthService = services.NewHealthService(contracts.Version, a.Logger)
	a.HealthService.RegisterCheck("conversion", a.ConversionService.SelfTest)

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, false)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Scrapes skip tracing and rate limiting.
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)
	if metricsHandler.Enabled() {
		r.Get("/metrics", metricsHandler.GetMetrics)
	}

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}

	// A mounted router runs its middleware before routing, so CORS preflights
	// reach the CORS middleware instead of the 405 handler.
	app := chi.NewRouter()
	app.NotFound(a.ErrorHandler.NotFound)
	app.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	app.Use(otelMiddleware.Handler)
	app.Use(customMiddleware.StructuredLogger(a.Logger))
	app.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	app.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		app.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		app.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	app.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

	a.setupRoutes(app)
	r.Mount("/", app)

	a.Router = r
	return nil
}

func (a *Application) setupRoutes(r chi.Router) {
	conversionHandler := handlers.NewConversionHandler(a.ConversionService, a.ErrorHandler, handlers.FormConfig{
		DateColumn:     a.Config.Processing.DateColumn,
		ValueColumn:    a.Config.Processing.ValueColumn,
		Format:         a.Config.Processing.OutputFormat,
		MaxUploadBytes: a.Config.Server.MaxUploadBytes,
	}, a.Logger)

	uploads := []func(http.Handler) http.Handler{
		customMiddleware.MaxBytes(a.Config.Server.MaxUploadBytes),
		customMiddleware.ContentTypeValidator("multipart/form-data"),
	}

	r.Get("/", conversionHandler.Index)
	r.With(uploads...).Post("/process", conversionHandler.Process)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.With(uploads...).Post("/v1/disaggregate", conversionHandler.Disaggregate)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
			handlers.HeaderFormat,
			handlers.HeaderRowsIn,
			handlers.HeaderRowsOut,
			handlers.HeaderSplit,
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Addr returns the address the server listens on, once started.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listen address and serves in the background.
// A serve failure after startup cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = listener

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if ready := a.HealthService.ReadinessCheck(ctx); ready.Status != services.StatusReady {
		a.Logger.WarnContext(ctx, "Startup readiness check failed", slog.Any("checks", ready.Checks))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+a.Addr()),
		slog.Int("workers", a.Config.Processing.Workers),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Stop shuts the server down, waiting up to ShutdownTimeout for requests in flight.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
