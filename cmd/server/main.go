package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"skywatch/crewdeck/internal/api"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/common"
	"skywatch/crewdeck/internal/config"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/db"
	"skywatch/crewdeck/internal/jobs"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
	"skywatch/crewdeck/internal/realtime"
	"skywatch/crewdeck/internal/routes"
	"skywatch/crewdeck/internal/storage"
	"skywatch/crewdeck/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Crewdeck starting up",
		"environment", cfg.Environment,
		"realtime_driver", cfg.RealtimeDriver,
		"storage_driver", cfg.StorageDriver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB with GORM
	gdb, err := db.InitPostgresORM(cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Error("Failed to migrate schema", "error", err.Error())
		os.Exit(1)
	}

	// Connect to DB with sqlx
	sqlDB, err := db.InitPostgres(cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		os.Exit(1)
	}
	defer sqlDB.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	feed, err := newFeed(cfg, metricsReg)
	if err != nil {
		logging.Error("Failed to initialize change feed", "driver", cfg.RealtimeDriver, "error", err.Error())
		os.Exit(1)
	}
	defer feed.Close()

	objects, err := newObjectStore(cfg)
	if err != nil {
		logging.Error("Failed to initialize object storage", "driver", cfg.StorageDriver, "error", err.Error())
		os.Exit(1)
	}

	queryCache := cache.NewClient(cache.Options{
		GCTime:     cfg.CacheGCTime,
		RetryDelay: cfg.ReadRetryDelay,
		Metrics:    metricsReg,
	})

	invalidations := bus.New(0)
	defer invalidations.Close()

	manager := realtime.NewManager(feed, invalidations, metricsReg)
	defer manager.Close()
	for _, spec := range realtime.GlobalSpecs() {
		manager.Subscribe(ctx, spec)
	}

	// Setup workers and jobs
	workers.InitWorkers(ctx, queryCache, invalidations, metricsReg)
	jobs.InitializeJobs(ctx, invalidations, metricsReg, cfg.PollInterval)

	deps := api.InitDependencies(gdb, sqlDB, queryCache, feed, manager, objects, nil)

	upSince := time.Now()
	router := routes.RegisterRoutes(routes.Options{
		Deps:           deps,
		Metrics:        metricsReg,
		Gatherer:       prometheus.DefaultGatherer,
		Issuer:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Health: map[string]api.Pinger{
			"postgres": deps.Repo.Stats,
			"realtime": manager,
			"storage":  objects,
		},
		UpSince: upSince,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("HTTP server shutdown failed", "error", err.Error())
		}
	}()

	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("HTTP server failed", "error", err.Error())
	}
}

func newFeed(cfg *config.Config, m *metrics.MetricsRegistry) (realtime.Feed, error) {
	switch cfg.RealtimeDriver {
	case "redis":
		return realtime.NewRedisFeed(common.NewRedisClient(cfg), m), nil
	case "nats":
		return realtime.NewNATSFeed(cfg.NATSURL, m)
	case "memory":
		return realtime.NewMemoryFeed(), nil
	}
	return nil, fmt.Errorf("unknown realtime driver %q", cfg.RealtimeDriver)
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return storage.NewMinioStore(
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.MinioUseSSL,
			cfg.StoragePublicBaseURL,
			constants.BucketAvatars,
			constants.BucketDocuments,
		)
	case "memory":
		return storage.NewMemoryStore(cfg.StoragePublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
