package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/climacare-alerts/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climacare-alerts/internal/adapter/kafka"
	"github.com/couchcryptid/climacare-alerts/internal/adapter/memory"
	mqttadapter "github.com/couchcryptid/climacare-alerts/internal/adapter/mqtt"
	"github.com/couchcryptid/climacare-alerts/internal/adapter/openweather"
	redisadapter "github.com/couchcryptid/climacare-alerts/internal/adapter/redis"
	"github.com/couchcryptid/climacare-alerts/internal/adapter/sqlstore"
	"github.com/couchcryptid/climacare-alerts/internal/alerts"
	"github.com/couchcryptid/climacare-alerts/internal/config"
	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/couchcryptid/climacare-alerts/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is fine; the environment may be set by the orchestrator.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// closers run in reverse order on shutdown.
	var closers []namedCloser
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].close(); err != nil {
				logger.Error(closers[i].name+" close error", "error", err)
			}
		}
		logger.Info("shutdown complete")
	}()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}
	closers = append(closers, namedCloser{"store backend", closeBackend})
	logger.Info("alert store ready", "backend", cfg.StoreBackend, "key", cfg.StoreKey)

	store := alerts.NewStore(backend, logger, metrics, alerts.WithKey(cfg.StoreKey), alerts.WithClock(clock))

	extractor, closeExtractor, err := newExtractor(cfg, clock, metrics, logger)
	if err != nil {
		return fmt.Errorf("create %s source: %w", cfg.Source, err)
	}
	closers = append(closers, namedCloser{"source", closeExtractor})

	loader, loaderClosers, err := newLoader(cfg, logger)
	closers = append(closers, loaderClosers...)
	if err != nil {
		return fmt.Errorf("create alert sinks: %w", err)
	}

	p := pipeline.New(extractor, pipeline.NewTransformer(store), loader, logger, metrics, cfg.BatchSize)
	janitor := alerts.NewJanitor(store, cfg.AlertMaxAge, cfg.EvictionInterval, clock, logger)

	api := httpadapter.NewAPI(store, cfg.AlertMaxAge, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady{store, p}, api, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// workers use the store backend and the sinks, so they must stop before the closers run.
	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	go func() {
		defer workers.Done()
		if err := janitor.Run(ctx); err != nil {
			logger.Error("janitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if !waitDone(shutdownCtx, &workers) {
		logger.Warn("pipeline or janitor still running at shutdown timeout")
	}
	return nil
}

// waitDone blocks until wg completes or ctx ends. It reports whether wg completed.
func waitDone(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

type namedCloser struct {
	name  string
	close func() error
}

func noopClose() error { return nil }

// openBackend selects the document store for STORE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config) (domain.StateStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.NewStore(), noopClose, nil
	case config.BackendSQLite:
		s, err := sqlstore.Open(ctx, sqlstore.SQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendPostgres:
		s, err := sqlstore.Open(ctx, sqlstore.Postgres, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendRedis:
		s := redisadapter.NewStore(redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.StoreBackend)
	}
}

// newExtractor selects the observation source for SOURCE.
func newExtractor(cfg *config.Config, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) (pipeline.BatchExtractor, func() error, error) {
	switch cfg.Source {
	case config.SourceKafka:
		reader := kafkaadapter.NewReader(cfg, logger)
		logger.Info("consuming observations from kafka", "topic", cfg.KafkaSourceTopic, "group", cfg.KafkaGroupID)
		return reader, reader.Close, nil
	case config.SourceOpenWeather:
		cities, err := config.LoadCities(cfg.CitiesFile)
		if err != nil {
			return nil, nil, err
		}
		client := openweather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, clock, metrics, logger)
		source := openweather.NewCachedSource(client, cfg.OpenWeatherCacheTTL, clock, metrics)
		logger.Info("polling openweather", "cities", len(cities), "interval", cfg.PollInterval, "cache_ttl", cfg.OpenWeatherCacheTTL)
		return openweather.NewPoller(source, cities, cfg.PollInterval, clock, logger), noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// newLoader assembles the enabled alert sinks.
func newLoader(cfg *config.Config, logger *slog.Logger) (pipeline.BatchLoader, []namedCloser, error) {
	var (
		loaders pipeline.MultiLoader
		closers []namedCloser
	)

	if cfg.KafkaSinkEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		closers = append(closers, namedCloser{"kafka writer", writer.Close})
		logger.Info("publishing alerts to kafka", "topic", cfg.KafkaSinkTopic)
	}

	if cfg.MQTTBroker != "" {
		publisher, disconnect, err := mqttadapter.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix, logger)
		if err != nil {
			return nil, closers, err
		}
		loaders = append(loaders, publisher)
		closers = append(closers, namedCloser{"mqtt", func() error { disconnect(); return nil }})
		logger.Info("publishing heat and cold alerts to mqtt", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)
	}

	switch len(loaders) {
	case 0:
		logger.Info("no alert sink enabled, alerts are only stored")
		return pipeline.DiscardLoader{}, closers, nil
	case 1:
		return loaders[0], closers, nil
	default:
		return loaders, closers, nil
	}
}
