// Package main provides the entrypoint for the privacy API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/api"
	"github.com/tariffai/privacy-api/internal/api/middleware"
	"github.com/tariffai/privacy-api/internal/auth"
	"github.com/tariffai/privacy-api/internal/database"
	"github.com/tariffai/privacy-api/internal/dsr"
	"github.com/tariffai/privacy-api/internal/featureflags"
	"github.com/tariffai/privacy-api/internal/notify"
	"github.com/tariffai/privacy-api/internal/share"
	"github.com/tariffai/privacy-api/internal/telemetry"
	"github.com/tariffai/privacy-api/internal/userdata"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tariffai-privacy-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting privacy API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	gatewayMetrics, err := middleware.NewGatewayMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize gateway metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service for admin endpoints
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize SES mailer with retry and circuit-breaker protection
	sesMailer, err := notify.NewSESMailer(ctx, notify.SESConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SES mailer")
	}
	resilientCfg := notify.DefaultResilientConfig("ses")
	resilientCfg.Recorder = gatewayMetrics
	mailer := notify.NewResilientMailer(sesMailer, resilientCfg)
	log.Info().Msg("mailer initialized")

	// Initialize data subject request service
	dsrService := dsr.NewService(dsr.ServiceConfig{
		Repository: dsr.NewPostgresRepository(pool),
		Store:      userdata.NewPostgresStore(pool),
		Mailer:     mailer,
		Flags:      ffService,
		Logger:     log,
	})
	log.Info().Msg("data request service initialized")

	// Initialize report share service
	shareBaseURL := os.Getenv("SHARE_BASE_URL")
	if shareBaseURL == "" {
		shareBaseURL = "https://tariff.ai"
	}
	shareService := share.NewService(share.ServiceConfig{
		Repository: share.NewPostgresRepository(pool),
		Flags:      ffService,
		Logger:     log,
		BaseURL:    shareBaseURL,
	})
	log.Info().Msg("report share service initialized")

	shareAPIKey := os.Getenv("SHARE_API_KEY")
	if shareAPIKey == "" {
		log.Warn().Msg("SHARE_API_KEY not set - share issuance endpoint is disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		JWTService:         jwtService,
		DSRService:         dsrService,
		ShareService:       shareService,
		FeatureFlagService: ffService,
		ShareAPIKey:        shareAPIKey,
		DB:                 pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
