package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge/telehealth-platform/internal/api/router"
	"github.com/carebridge/telehealth-platform/internal/carerequest"
	appconfig "github.com/carebridge/telehealth-platform/internal/config"
	"github.com/carebridge/telehealth-platform/internal/directory"
	"github.com/carebridge/telehealth-platform/internal/matchcache"
	"github.com/carebridge/telehealth-platform/internal/observability/metrics"
	"github.com/carebridge/telehealth-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telehealth-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	var (
		providerRepo directory.ProviderRepository
		patientRepo  directory.PatientRepository
		requestStore carerequest.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database not reachable", "error", err)
			os.Exit(1)
		}
		providerRepo = directory.NewPostgresProviderRepository(pool)
		patientRepo = directory.NewPostgresPatientRepository(pool)
		requestStore = carerequest.NewPostgresStore(pool)
		logger.Info("using postgres-backed stores")
	} else {
		memProviders := directory.NewInMemoryProviderRepository()
		memPatients := directory.NewInMemoryPatientRepository()
		providerRepo = memProviders
		patientRepo = memPatients
		requestStore = carerequest.NewInMemoryStore()
		if cfg.SeedFixtures {
			if err := directory.SeedFixtures(ctx, memProviders, memPatients); err != nil {
				logger.Error("failed to seed fixtures", "error", err)
				os.Exit(1)
			}
			logger.Info("in-memory stores seeded with fixture data")
		}
	}

	rankCache := matchcache.New(buildRedis(ctx, cfg, logger), cfg.RankCacheTTL)

	registry := prometheus.NewRegistry()
	matchingMetrics := metrics.NewMatchingMetrics(registry)

	requestService := carerequest.NewService(
		requestStore,
		providerRepo,
		rankCache,
		matchingMetrics,
		logger,
		cfg.MaxRankResults,
	)

	routerCfg := &router.Config{
		Logger:             logger,
		DirectoryHandler:   directory.NewHandler(providerRepo, patientRepo, logger),
		CareRequestHandler: carerequest.NewHandler(requestService, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildRedis returns a ping-verified client, or nil when Redis is not
// configured or unreachable; the rank cache then degrades to a no-op.
func buildRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	options := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}
