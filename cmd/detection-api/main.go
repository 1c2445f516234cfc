// Package main is the entry point for the detection-api server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/stopfakeai/detection-api/internal/config"
	"github.com/stopfakeai/detection-api/internal/constants"
	"github.com/stopfakeai/detection-api/internal/database"
	"github.com/stopfakeai/detection-api/internal/database/migrations"
	"github.com/stopfakeai/detection-api/internal/http/handlers"
	"github.com/stopfakeai/detection-api/internal/http/mw"
	"github.com/stopfakeai/detection-api/internal/logging"
	"github.com/stopfakeai/detection-api/internal/repository"
	"github.com/stopfakeai/detection-api/internal/service"
	"github.com/stopfakeai/detection-api/internal/shutdown"
	"github.com/stopfakeai/detection-api/internal/version"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting detection-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	schemaVersion, err := migrations.GetLatestVersion(db)
	if err != nil {
		logger.Warn("failed to get schema version", "error", err)
	} else if schemaVersion != "" {
		migrationCount, _ := migrations.GetMigrationCount(db)
		logger.Info("database schema ready", "schema_version", schemaVersion, "migrations_applied", migrationCount)
	}

	repos := repository.NewRepositories(db)

	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	logger.Info("detection configured",
		"live_text_detection", cfg.LiveTextDetection(),
		"billing_enabled", cfg.BillingEnabled(),
	)

	// Idle monitor for scale-to-zero hosting. Health probes don't count
	// as activity.
	idleMonitor := shutdown.NewIdleMonitor(cfg.IdleTimeout, logger, "/healthz", "/readyz")
	idleMonitor.Start()

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(idleMonitor.Middleware)

	// Detection endpoints may wait on a vendor API round trip plus retries
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:          constants.DefaultRequestTimeout,
		Extended:         constants.DetectionRequestTimeout,
		ExtendedPatterns: []string{"/detect"},
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Quota-Limit", "X-Quota-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit sized for media uploads
	router.Use(middleware.RequestSize(constants.MaxRequestBodySize))

	// Global rate limit by IP (fallback for unauthenticated requests)
	router.Use(httprate.LimitByIP(constants.GlobalIPRateLimitPerMinute, time.Minute))

	// Global concurrency throttle
	router.Use(middleware.Throttle(constants.GlobalConcurrencyLimit))

	router.Use(mw.APIVersion())
	router.Use(mw.Cache(mw.DefaultCacheConfig()))

	humaConfig := huma.DefaultConfig("StopFake AI Detection API", version.Get().Short())
	humaConfig.Info.Description = "Detects AI-generated text, images, and audio with a tiered pipeline of cached, heuristic, and vendor-backed classification."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:        "http",
			Scheme:      "bearer",
			Description: "JWT issued by /api/v1/auth/login. Include it in the Authorization header as `Bearer <token>`.",
		},
	}

	// Main API with OpenAPI docs
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("StopFake AI Detection API", version.Get().Short())
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Config for protected routes (documented by the main API spec)
	protectedConfig := huma.DefaultConfig("StopFake AI Detection API", version.Get().Short())
	protectedConfig.Info.Description = humaConfig.Info.Description
	protectedConfig.Servers = humaConfig.Servers
	protectedConfig.DocsPath = ""
	protectedConfig.OpenAPIPath = ""
	protectedConfig.SchemasPath = ""

	// Public routes
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)
	huma.Get(api, "/api/v1/pricing/plans", handlers.NewPricingHandler(services.Pricing).ListPlans)
	huma.Get(api, "/api/v1/languages", handlers.ListLanguages)

	authHandler := handlers.NewAuthHandler(services.Auth, services.Usage)
	huma.Post(api, "/api/v1/auth/signup", authHandler.Signup)
	huma.Post(api, "/api/v1/auth/login", authHandler.Login)

	// Kubernetes probes (hidden from docs)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	readyzHandler := handlers.NewReadyzHandler(db)
	huma.Get(hiddenAPI, "/readyz", readyzHandler.Readyz)

	// Stripe webhook (signature verified by handler, not user auth)
	if cfg.StripeWebhookSecret != "" {
		stripeWebhook := handlers.NewStripeWebhookHandler(cfg, services.Billing, logger)
		router.Post("/api/v1/webhooks/stripe", stripeWebhook.HandleWebhook)
		logger.Info("stripe webhook endpoint enabled")
	}

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(services.Tokens))

		protectedAPI := humachi.New(r, protectedConfig)

		huma.Get(protectedAPI, "/api/v1/me", authHandler.Me)
		huma.Post(protectedAPI, "/api/v1/auth/logout", authHandler.Logout)
		huma.Get(protectedAPI, "/api/v1/usage", handlers.NewUsageHandler(services.Usage).GetUsage)

		billingHandler := handlers.NewBillingHandler(services.Billing)
		huma.Post(protectedAPI, "/api/v1/billing/checkout", billingHandler.CreateCheckout)
		huma.Post(protectedAPI, "/api/v1/billing/portal", billingHandler.CreatePortal)
		huma.Get(protectedAPI, "/api/v1/billing/verify", billingHandler.VerifySession)
	})

	// Detection routes with daily quota and per-user rate limiting
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(services.Tokens))
		r.Use(mw.RequireDailyQuota(services.Usage))
		r.Use(mw.RateLimitByUser(mw.DefaultRateLimitConfig()))

		detectAPI := humachi.New(r, protectedConfig)
		detectHandler := handlers.NewDetectHandler(services.Detection, services.Media, logger)
		huma.Post(detectAPI, "/api/v1/detect/text", detectHandler.DetectText)

		// Raw HTTP handlers for multipart uploads
		r.Post("/api/v1/detect/image", detectHandler.DetectImage)
		r.Post("/api/v1/detect/audio", detectHandler.DetectAudio)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-sigChan:
			logger.Info("shutting down server", "reason", "signal")
		case <-idleMonitor.IdleChan():
			logger.Info("shutting down server", "reason", "idle")
		}
		idleMonitor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
