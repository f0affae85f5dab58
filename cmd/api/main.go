package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/credentials"
	httpx "github.com/geocoder89/blogspace/internal/http"
	"github.com/geocoder89/blogspace/internal/http/handlers"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/geocoder89/blogspace/internal/redisclient"
	"github.com/geocoder89/blogspace/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelServiceName, cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(registry)

	backend, err := storage.Open(ctx, cfg, prom, log)
	if err != nil {
		log.Error("storage open failed", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := backend.Migrate(ctx); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	creds := credentials.NewStore(backend.Accounts)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	created, err := creds.EnsureAccount(seedCtx, cfg.SeedName, cfg.SeedEmail, cfg.SeedPassword)
	cancelSeed()
	if err != nil {
		log.Error("seed account failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("seed account created", "email", cfg.SeedEmail)
	}

	var redis *redisclient.Client
	if cfg.RedisAddr != "" {
		redis = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redis.Close()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		if err := redis.Ping(pingCtx); err != nil {
			// the limiter fails open, so keep serving
			log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		cancelPing()
	}

	health := handlers.NewHealthHandler(httpx.HealthChecks(backend, redis))

	router := httpx.NewRouter(log, httpx.Deps{
		Backend:     backend,
		Credentials: creds,
		Redis:       redis,
		Registry:    registry,
		Prom:        prom,
		Health:      health,
	}, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", backend.Driver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	health.MarkShuttingDown()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
