package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/config"
	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/handler"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/cache"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/directory"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/resilience"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/session"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/upstream"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("upstream_base_url", cfg.UpstreamBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Duration("idle_timeout", cfg.IdleTimeout),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "buyer-portal-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Session state (in-memory, lost on restart by design) ---
	tokenStore := session.NewTokenStore(cfg.SweepInterval)
	activityTracker := session.NewActivityTracker()
	userStore := directory.NewStore()

	// --- Caches ---
	companyCache := cache.New[[]domain.Company](cfg.CacheTTL)
	resetTokenCache := cache.New[string](15 * time.Minute)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("upstream")

	// --- Upstream client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	upstreamClient := upstream.NewClient(
		httpClient,
		cfg.UpstreamBaseURL,
		cfg.UpstreamStoreHash,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	authSvc := service.NewAuthService(
		upstreamClient,
		userStore,
		tokenStore,
		activityTracker,
		resetTokenCache,
		metrics,
		logger,
		cfg.JWTSecret,
		cfg.JWTAccessTTL,
		cfg.JWTRefreshTTL,
		cfg.UpstreamTokenTTL,
	)
	sessionSvc := service.NewSessionService(activityTracker, cfg.IdleTimeout, metrics, logger)
	companySvc := service.NewCompanyService(
		upstreamClient,
		tokenStore,
		upstreamClient,
		upstreamClient,
		upstreamClient,
		authSvc,
		companyCache,
		metrics,
		logger,
		int(cfg.JWTAccessTTL.Seconds()),
	)
	ordersSvc := service.NewOrdersService(tokenStore, upstreamClient, metrics, logger)
	quotesSvc := service.NewQuotesService(tokenStore, upstreamClient, metrics, logger)
	invoicesSvc := service.NewInvoicesService(tokenStore, upstreamClient, metrics, logger)
	addressesSvc := service.NewAddressesService(tokenStore, upstreamClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.RouterDeps{
		Auth:           authSvc,
		Sessions:       sessionSvc,
		Company:        companySvc,
		Orders:         ordersSvc,
		Quotes:         quotesSvc,
		Invoices:       invoicesSvc,
		Addresses:      addressesSvc,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RefreshTTL:     cfg.JWTRefreshTTL,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
