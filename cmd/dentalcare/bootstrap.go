package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dentalcare/booking-api/internal/config"
	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/internal/repository/memory"
	"github.com/dentalcare/booking-api/internal/repository/postgres"
	"github.com/dentalcare/booking-api/pkg/logger"
	"github.com/dentalcare/booking-api/pkg/messaging/redis"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

const metricsNamespace = "dentalcare"

// app holds what every long-running command shares.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	l := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	})
	l.SetGlobal()

	reg := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		log:      l,
		registry: reg,
		metrics:  metrics.NewMetrics(metricsNamespace, reg),
	}, nil
}

// stores is the persistence wiring for the configured driver. outbox and db
// are nil with the memory driver.
type stores struct {
	documents repository.DocumentStore
	outbox    repository.OutboxRepository
	db        *sqlx.DB
}

func (s *stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (a *app) openStores(ctx context.Context) (*stores, error) {
	var s stores
	switch a.cfg.Store.Driver {
	case "memory":
		s.documents = memory.NewDocumentStore()
	case "postgres":
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		base := postgres.NewBaseRepository(db)
		s.db = db
		s.documents = postgres.NewDocumentStore(base)
		s.outbox = postgres.NewOutboxRepository(base)
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}

	s.documents = repository.Instrument(s.documents, a.metrics, a.log.ZL)
	return &s, nil
}

func (a *app) openRedis(ctx context.Context) (*redis.RedisBroker, error) {
	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:            a.cfg.Redis.URL,
		MaxRetries:     a.cfg.Redis.MaxRetries,
		PoolSize:       a.cfg.Redis.PoolSize,
		MinIdleConns:   a.cfg.Redis.MinIdleConns,
		BreakerTimeout: a.cfg.Redis.BreakerOpen,
	}, a.log.ZL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return broker, nil
}
