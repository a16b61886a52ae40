package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/app"
	"github.com/RonaldAllanRivera/ride-info/internal/config"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/repository/memory"
	"github.com/RonaldAllanRivera/ride-info/internal/repository/postgres"
	"github.com/RonaldAllanRivera/ride-info/internal/seed"
)

func main() {
	cfg := config.Load()

	if err := logger.Init("ride-info-api", cfg.Server.IsDevelopment()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err), zap.String("env", cfg.Server.Env))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("Failed to initialize New Relic", zap.Error(err))
			nrApp = nil
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
			defer nrApp.Shutdown(5 * time.Second)
		}
	}

	var repos app.Repositories
	switch cfg.Store.Backend {
	case config.StoreMemory:
		store := memory.NewStore()
		repos = app.Repositories{Users: store.Users, Rides: store.Rides, Events: store.Events}
		logger.Warn("Using in-process store; data is lost on exit")

		opts := seed.DefaultOptions()
		opts.AdminEmail = cfg.Seed.AdminEmail
		opts.AdminPassword = cfg.Seed.AdminPassword
		seedRepos := seed.Repositories{Users: store.Users, Rides: store.Rides, Events: store.Events}
		if _, err := seed.Run(ctx, seedRepos, opts, time.Now()); err != nil {
			logger.Fatal("Failed to seed in-process store", zap.Error(err))
		}
	default:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

		if err := app.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}

		store := postgres.NewStore(db)
		repos = app.Repositories{Users: store.Users, Rides: store.Rides, Events: store.Events, Ping: store}
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: app.NewHandler(cfg, app.Deps{
			Repos:       repos,
			Redis:       redisClient,
			NewRelicApp: nrApp,
			Registry:    registry,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited")
}
