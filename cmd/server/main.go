package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/auth"
	"github.com/invoiceflow/backend/internal/infrastructure/cache"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/logger"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence"
	"github.com/invoiceflow/backend/internal/infrastructure/printing"
	"github.com/invoiceflow/backend/internal/infrastructure/storage"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"github.com/invoiceflow/backend/internal/interfaces/http/handler"
	"github.com/invoiceflow/backend/internal/interfaces/http/middleware"
	"github.com/invoiceflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			InvoiceFlow API
//	@version		1.0
//	@description	Invoice authoring, totals and PDF export
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting InvoiceFlow",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry providers install themselves globally; disabled ones are no-ops
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFromTelemetry(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFromTelemetry(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFromTelemetry(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// SQLite is used for local runs without the migrate command
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	if err := telemetry.NewDBTracingPlugin(
		telemetry.DBTracingConfigFromTelemetry(cfg.Telemetry, cfg.Database.Driver), log,
	).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meterProvider.Meter("invoiceflow"))
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	prefsRepo := persistence.NewGormPreferencesRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)

	if err := templateRepo.SeedBuiltins(ctx); err != nil {
		log.Fatal("Failed to seed invoice templates", zap.Error(err))
	}

	catalogCache, cacheCloser, err := cache.NewCatalogCacheFactory(cfg.Redis, cfg.Printing.CatalogCacheTTL,
		cache.WithLogger(log),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create template catalog cache", zap.Error(err))
	}
	defer func() {
		_ = cacheCloser.Close()
	}()

	registry := printing.DefaultRegistry()
	htmlEngine := printing.NewHTMLEngine()

	renderer, closeRenderer, err := newRenderer(cfg, htmlEngine, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer closeRenderer()

	artifacts, err := newArtifactStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize artifact storage", zap.Error(err))
	}

	// Initialize application services
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, businessRepo, clientRepo, productRepo, prefsRepo,
		invoicingapp.WithInvoiceMetrics(invoiceMetrics),
		invoicingapp.WithInvoiceLogger(log),
	)
	documentService := invoicingapp.NewDocumentService(invoicingapp.DocumentServiceConfig{
		InvoiceRepo:  invoiceRepo,
		BusinessRepo: businessRepo,
		ClientRepo:   clientRepo,
		PrefsRepo:    prefsRepo,
		Registry:     registry,
		Renderer:     renderer,
		Storage:      artifacts,
		Backend:      cfg.Printing.Backend,
		Metrics:      invoiceMetrics,
		Logger:       log,
	})
	templateService := invoicingapp.NewTemplateService(templateRepo, catalogCache, registry, htmlEngine, log)
	preferencesService := invoicingapp.NewPreferencesService(prefsRepo)
	businessService := invoicingapp.NewBusinessService(businessRepo)
	clientService := invoicingapp.NewClientService(clientRepo)
	productService := invoicingapp.NewProductService(productRepo)

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators for request binding
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Middleware order: request id first so logs, spans and errors share it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.SecureWithConfig(securityCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	opts := router.Options{AfterAuth: []gin.HandlerFunc{middleware.TracingAttributeInjector()}}
	jwtService := auth.NewJWTService(cfg.JWT)
	if cfg.JWT.Enabled {
		jwtCfg := middleware.DefaultJWTConfig(jwtService)
		jwtCfg.Logger = log
		opts.Auth = middleware.JWTAuthMiddlewareWithConfig(jwtCfg)
		log.Info("JWT authentication enabled")
	} else {
		// tokens are still honoured; requests without one fall back to X-User-ID
		opts.Auth = middleware.OptionalJWTAuthMiddleware(jwtService)
		log.Warn("JWT authentication disabled, trusting the X-User-ID header")
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		opts.DocumentLimit = middleware.RateLimit(limiter)
	}

	router.RegisterInvoicing(engine, router.Handlers{
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		Document:    handler.NewDocumentHandler(documentService),
		Template:    handler.NewTemplateHandler(templateService),
		Preferences: handler.NewPreferencesHandler(preferencesService),
		Business:    handler.NewBusinessHandler(businessService),
		Client:      handler.NewClientHandler(clientService),
		Product:     handler.NewProductHandler(productService),
		Health:      handler.NewHealthHandler(db, version),
	}, opts)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if limiter != nil {
		limiter.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newRenderer builds the configured PDF backend. The returned func releases it.
func newRenderer(cfg *config.Config, engine *printing.HTMLEngine, log *zap.Logger) (printing.PDFRenderer, func(), error) {
	if cfg.Printing.Backend == config.PrintBackendChromedp {
		r, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			Timeout:   cfg.Printing.Timeout,
			RemoteURL: cfg.Printing.ChromeRemoteURL,
			ExecPath:  cfg.Printing.ChromePath,
			NoSandbox: true,
			Engine:    engine,
			Logger:    log,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using chromedp PDF renderer")
		return r, func() {
			if err := r.Close(); err != nil {
				log.Warn("Error closing chromedp renderer", zap.Error(err))
			}
		}, nil
	}

	log.Info("Using gofpdf PDF renderer")
	return printing.NewGofpdfRenderer(&printing.GofpdfConfig{
		Creator: cfg.App.Name,
		Logger:  log,
	}), func() {}, nil
}

// newArtifactStorage returns nil when archiving is disabled
func newArtifactStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.ArtifactStorage, error) {
	switch cfg.Printing.Storage {
	case config.ArtifactStorageFilesystem:
		log.Info("Archiving rendered invoices on disk", zap.String("dir", cfg.Printing.OutputDir))
		fs, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath: cfg.Printing.OutputDir,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Printing.Retention > 0 {
			removed, err := fs.CleanupOlderThan(ctx, cfg.Printing.Retention)
			if err != nil {
				log.Warn("Failed to prune archived invoices", zap.Error(err))
			} else if removed > 0 {
				log.Info("Pruned archived invoices", zap.Int("removed", removed))
			}
		}
		return fs, nil
	case config.ArtifactStorageS3:
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Info("Archiving rendered invoices in object storage", zap.String("bucket", s3.Bucket()))
		return s3, nil
	default:
		return nil, nil
	}
}
