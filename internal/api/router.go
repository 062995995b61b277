// Package api provides the HTTP API for the privacy service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/api/handler"
	"github.com/tariffai/privacy-api/internal/api/middleware"
	"github.com/tariffai/privacy-api/internal/auth"
	"github.com/tariffai/privacy-api/internal/dsr"
	"github.com/tariffai/privacy-api/internal/featureflags"
	"github.com/tariffai/privacy-api/internal/share"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	JWTService         *auth.JWTService
	DSRService         *dsr.Service
	ShareService       *share.Service
	FeatureFlagService *featureflags.Service

	// ShareAPIKey guards share-link issuance. Empty closes the surface.
	ShareAPIKey string

	// DB is pinged by the readiness endpoint; may be nil.
	DB handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tariffai-privacy-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	dsrHandler := handler.NewDSRHandler(cfg.DSRService, cfg.Logger)
	shareHandler := handler.NewShareHandler(cfg.ShareService, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.DSRService, cfg.Logger)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService, cfg.Logger)

	// Create auth middleware
	adminAuth := middleware.AdminAuth(cfg.JWTService)
	apiKey := middleware.APIKey(cfg.ShareAPIKey)

	// Create rate limit middleware for different endpoint categories
	strictRateLimit := middleware.RateLimitByIP(middleware.StrictRateLimit)     // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Privacy request endpoints (public) - strict rate limiting.
		// These take anonymous input and the verification code is short,
		// so they get the tightest per-IP window.
		r.Route("/privacy/requests", func(r chi.Router) {
			r.Use(strictRateLimit)
			r.Post("/", dsrHandler.Submit)
			r.Post("/verify", dsrHandler.Verify)
			r.Post("/access", dsrHandler.Access)
			r.Post("/erasure", dsrHandler.Erasure)
		})

		// Report share endpoints
		r.Route("/reports", func(r chi.Router) {
			// Issuance requires the shared API key
			r.With(apiKey, standardRateLimit).Post("/share", shareHandler.Issue)
			// Lookup is public; the token is the credential
			r.With(standardRateLimit).Get("/shared/{token}", shareHandler.Lookup)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(standardRateLimit)

			// Data request review
			r.Route("/privacy/requests", func(r chi.Router) {
				r.Get("/", adminHandler.ListRequests)
				r.Route("/{requestId}", func(r chi.Router) {
					r.Get("/", adminHandler.GetRequest)
					r.Post("/reject", adminHandler.RejectRequest)
				})
			})

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
