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
	"go.uber.org/zap"

	excursionapp "github.com/sskmusic7/salt-life-excursions-sub001/internal/application/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/cache"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/config"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/logger"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/supply"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/handler"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/middleware"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/router"
)

//	@title			Excursions API
//	@version		1.0
//	@description	Search, availability and cart booking over the supply API
//	@BasePath		/api/v1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log bridge feeds the zap logger, so it comes first
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting excursions API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("supply_environment", cfg.Supply.Environment),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profCfg := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           profCfg.Enabled,
		ServerAddress:     profCfg.ServerAddress,
		ApplicationName:   profCfg.ApplicationName,
		BasicAuthUser:     profCfg.BasicAuthUser,
		BasicAuthPassword: profCfg.BasicAuthPassword,
		ProfileTypes:      profCfg.ProfileTypes,
		SupplyEnvironment: cfg.Supply.Environment,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && profCfg.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	supplyMetrics, err := telemetry.NewSupplyMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create supply metrics", zap.Error(err))
	}

	// Supply client
	creds, err := supply.NewCredentials(
		cfg.Supply.Environment,
		cfg.Supply.SandboxAPIKey,
		cfg.Supply.ProductionAPIKey,
		cfg.Supply.BaseURL,
	)
	if err != nil {
		log.Fatal("Invalid supply environment", zap.Error(err))
	}
	defaultLocale, err := excursion.ParseLocale(cfg.Supply.DefaultCurrency, cfg.Supply.DefaultLanguage)
	if err != nil {
		log.Fatal("Invalid supply default locale", zap.Error(err))
	}
	supplyClient, err := supply.NewClient(supply.Config{
		Credentials:   creds,
		Timeout:       cfg.Supply.Timeout,
		RateLimit:     cfg.Supply.RateLimit,
		RateBurst:     cfg.Supply.RateBurst,
		DefaultLocale: defaultLocale,
	}, supply.WithMetrics(supplyMetrics), supply.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create supply client", zap.Error(err))
	}
	if !supplyClient.Configured() {
		log.Warn("Supply API key missing, supply calls will fail until configured",
			zap.Error(excursion.NewConfigurationError("no API key for %s environment", creds.Environment)),
		)
	}

	// Duplicate submission guard and catalog cache
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))

	var guard shared.SubmissionGuard
	if cfg.Booking.DuplicateGuardEnabled {
		guard, err = cacheFactory.CreateSubmissionGuard()
		if err != nil {
			log.Fatal("Failed to create submission guard", zap.Error(err))
		}
		defer func() {
			if err := guard.Close(); err != nil {
				log.Error("Error closing submission guard", zap.Error(err))
			}
		}()
	}

	var lookupCache excursion.LookupCache
	cacheTTL := excursionapp.CacheTTL{}
	if cfg.Cache.Enabled {
		lookupCache, err = cacheFactory.CreateLookupCache()
		if err != nil {
			log.Fatal("Failed to create lookup cache", zap.Error(err))
		}
		defer func() {
			if err := lookupCache.Close(); err != nil {
				log.Error("Error closing lookup cache", zap.Error(err))
			}
		}()
		cacheTTL = excursionapp.CacheTTL{
			Product:      cfg.Cache.ProductTTL,
			Destinations: cfg.Cache.DestinationTTL,
		}
	}

	// Application services
	serviceOpts := []excursionapp.Option{
		excursionapp.WithReadRetries(cfg.Supply.ReadRetries, cfg.Supply.RetryInterval),
		excursionapp.WithMetrics(supplyMetrics),
		excursionapp.WithLogger(log),
	}
	searchService := excursionapp.NewSearchService(supplyClient, serviceOpts...)
	availabilityService := excursionapp.NewAvailabilityService(supplyClient, serviceOpts...)
	bookingService := excursionapp.NewBookingService(supplyClient, guard, shared.SubmissionGuardConfig{
		Enabled: cfg.Booking.DuplicateGuardEnabled,
		TTL:     cfg.Booking.DuplicateGuardTTL,
	}, serviceOpts...)
	catalogService := excursionapp.NewCatalogService(supplyClient, lookupCache, cacheTTL, serviceOpts...)

	// HTTP handlers
	excursionHandler := handler.NewExcursionHandler(searchService, availabilityService, bookingService, catalogService,
		handler.WithDefaultLocale(defaultLocale),
	)
	healthHandler := handler.NewHealthHandler(supplyClient, string(creds.Environment), version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server span plus request attributes and error status
	// 5. Metrics - Request count, latency and size
	// 6. Profiling - Route labels on CPU and allocation samples
	// 7. Security - Add security headers
	// 8. CORS - Handle cross-origin requests
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.SpanAttributes())
		engine.Use(middleware.SpanErrorMarker())
	}
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meter, log))
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling(middleware.DefaultProfilingConfig()))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, 0)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.ExcursionRoutes(excursionHandler, cfg.HTTP.MaxBodySize))
	r.Setup()

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
	// Providers log their own shutdown errors
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = logProvider.Shutdown(shutdownCtx, log)
	_ = profiler.Stop()

	log.Info("Server exited gracefully")
}
