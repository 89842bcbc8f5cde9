package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/config"
	dbRedis "github.com/kailas-cloud/recordex/internal/db/redis"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	"github.com/kailas-cloud/recordex/internal/engine"
	"github.com/kailas-cloud/recordex/internal/events"
	logpkg "github.com/kailas-cloud/recordex/internal/logger"
	"github.com/kailas-cloud/recordex/internal/metrics"
	savedrepo "github.com/kailas-cloud/recordex/internal/repository/savedsearch"
	"github.com/kailas-cloud/recordex/internal/seed"
	chiTransport "github.com/kailas-cloud/recordex/internal/transport/chi"
	"github.com/kailas-cloud/recordex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recordex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("events_driver", cfg.Events.Driver),
		zap.String("saved_searches_driver", cfg.Storage.SavedSearches.Driver),
	)

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		logger.Fatal("Failed to load engine resources", zap.Error(err))
	}
	opts.Logger = logger

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	opts.Subscribers = []event.Handler{events.LogHandler(logger.Named("audit")), metrics.EventHandler()}

	ctx := context.Background()

	// Optional external event sink
	if cfg.Events.Driver == "redis" {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Events.Addrs,
			Password: cfg.Events.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create event store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Events.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Event store not ready", zap.Error(err))
		}
		logger.Info("Connected to event store", zap.Strings("addrs", cfg.Events.Addrs))

		sink := events.NewRedisSink(store, events.SinkConfig{
			Channel: cfg.Events.Channel,
			Buffer:  cfg.Events.Buffer,
			OnDrop:  metrics.DropCounter(),
		}, logger.Named("events"))
		defer sink.Close()

		opts.Subscribers = append(opts.Subscribers, sink.Handler())
		opts.EventsPinger = sink
	}

	// Saved search store
	if cfg.Storage.SavedSearches.Driver == "badger" {
		saved, err := savedrepo.OpenBadger(cfg.Storage.SavedSearches.Path, false, logger)
		if err != nil {
			logger.Fatal("Failed to open saved search store", zap.Error(err))
		}
		defer func() {
			if err := saved.Close(); err != nil {
				logger.Error("Error closing saved search store", zap.Error(err))
			}
		}()
		opts.SavedSearches = saved
		opts.StoragePinger = saved
	}

	eng, err := engine.New(opts)
	if err != nil {
		logger.Fatal("Failed to build engine", zap.Error(err))
	}
	prometheus.MustRegister(metrics.NewIndexCollector(eng.Documents))
	logger.Info("Engine ready",
		zap.Strings("types", eng.Registry.Types()),
		zap.Int("lexicon_version", eng.Analyzer.Version()),
	)

	if cfg.Seed.Path != "" {
		if err := applySeed(ctx, eng, cfg.Seed.Path, logger); err != nil {
			logger.Warn("Seed applied with errors", zap.Error(err))
		}
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Indexing:  eng.Indexing,
		Search:    eng.Search,
		Suggest:   eng.Suggest,
		Saved:     eng.Saved,
		History:   eng.HistoryLog,
		Analytics: eng.Analytics,
		Schemas:   eng.SchemaAdmin,
		Health:    eng.Health,
	}, logger)

	r := server.Router(chiTransport.RouterConfig{
		APIKeys:   cfg.Auth.APIKeys,
		RateLimit: cfg.RateLimit.RPS,
		Burst:     cfg.RateLimit.Burst,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// applySeed indexes the fixture at path. Per-document failures are logged
// and the rest of the fixture is still indexed.
func applySeed(ctx context.Context, eng *engine.Engine, path string, logger *zap.Logger) error {
	docs, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	if _, err := seed.Apply(ctx, eng.Indexing, docs, logger.Named("seed").With(zap.String("path", path))); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}
