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
	"go.uber.org/zap/zapcore"

	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
	"github.com/freightdesk/backend/internal/interfaces/http/handler"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/freightdesk/backend/internal/interfaces/http/router"
)

//	@title			LTL Shipping API
//	@version		1.0
//	@description	LTL order consolidation, Bill of Lading generation and WMS order submission
//	@BasePath		/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTEL logs bridge: tee the console core with the exporter core
	collector := telemetry.Collector{
		Endpoint:       cfg.Telemetry.CollectorEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.App.Version,
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:   cfg.Telemetry.LogsEnabled,
		Collector: collector,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	log := telemetry.NewBridgedLogger(baseLog.Core(), telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: logProvider,
		Level:          logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting LTL shipping backend",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		Collector:     collector,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:        cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsExportInterval,
		Collector:      collector,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileCPU:      true,
		ProfileAlloc:    true,
		ProfileInuse:    true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	shippingMetrics, err := telemetry.NewShippingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register shipping metrics", zap.Error(err))
	}

	app, err := newApplication(ctx, cfg, shippingMetrics, log)
	if err != nil {
		log.Fatal("Failed to wire shipping service", zap.Error(err))
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.IsProduction()

	// Request ID first so every later middleware can log it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(profiler.IsEnabled()))
	engine.Use(middleware.SecureWithConfig(securityCfg))
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version)
	app.healthChecks(systemHandler)
	engine.GET("/health", systemHandler.Health)

	// Only the batch endpoints are throttled
	shippingRoutes := handler.NewShippingHandler(app.service).Routes()
	if cfg.HTTP.RateLimit > 0 {
		shippingRoutes.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)))
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(shippingRoutes).Register(systemHandler.Routes())
	r.Setup()
	for _, route := range shippingRoutes.Routes() {
		log.Debug("Route registered",
			zap.String("group", shippingRoutes.Name()),
			zap.String("method", route.Method),
			zap.String("path", r.BasePath()+route.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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
	if err := app.Close(); err != nil {
		log.Warn("Renderer did not close cleanly", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
