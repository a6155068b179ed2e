// Package app assembles the engine from configuration. The server and the
// CLI share it so both run against the same stores and policies.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	classmetrics "dealer/internal/classification/metrics"
	classservice "dealer/internal/classification/service"
	classstore "dealer/internal/classification/store"
	dirstore "dealer/internal/directory/store"
	invservice "dealer/internal/inventory/service"
	invstore "dealer/internal/inventory/store"
	"dealer/internal/platform/config"
	"dealer/internal/platform/postgres"
	platformredis "dealer/internal/platform/redis"
	"dealer/internal/pricing"
	reportservice "dealer/internal/reports/service"
	reportstore "dealer/internal/reports/store"
	salemetrics "dealer/internal/sale/metrics"
	saleservice "dealer/internal/sale/service"
	salestore "dealer/internal/sale/store"
	"dealer/internal/seed"
	"dealer/pkg/platform/audit"
	"dealer/pkg/platform/audit/publisher"
	auditmemory "dealer/pkg/platform/audit/store/memory"
	auditpostgres "dealer/pkg/platform/audit/store/postgres"
	"dealer/pkg/platform/tx"
)

// Directory is the reference-data store, readable by the engine and writable by seeding.
type Directory interface {
	saleservice.Directory
	seed.Directory
}

// Engine is the wired set of services.
type Engine struct {
	DB    *sql.DB
	Redis *platformredis.Client

	Directory      Directory
	Vehicles       invservice.Store
	Registry       *invservice.Registry
	Sales          *saleservice.Service
	Classification *classservice.Service
	Reports        *reportservice.Service
	Audit          audit.Reader
}

// Options carries the process-wide metric sets so the server and CLI can
// register them once.
type Options struct {
	SaleMetrics           *salemetrics.Metrics
	ClassificationMetrics *classmetrics.Metrics
	AuditMetrics          *publisher.Metrics
}

// Build wires the memory backend when no database URL is configured and the
// PostgreSQL backend otherwise. Redis is optional for both.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*Engine, error) {
	calc, err := pricing.NewCalculator(pricing.PolicyFromFloats(
		cfg.Pricing.SeasonalRate, cfg.Pricing.FrequentClientRate, cfg.Pricing.MaxCombinedRate))
	if err != nil {
		return nil, fmt.Errorf("pricing policy: %w", err)
	}

	e := &Engine{}
	var (
		saleStore   saleservice.Store
		statsStore  classservice.SalesStats
		reports     reportservice.Store
		auditStore  audit.Store
		txRunner    saleservice.StoreTx
		backendName string
	)

	if cfg.Database.URL == "" {
		gate := tx.NewGate()
		dir := dirstore.NewInMemory()
		vehicles := invstore.NewInMemory(gate)
		sales := salestore.NewInMemory(gate)
		auditMem := auditmemory.NewInMemoryStore(gate)

		e.Directory, e.Vehicles, e.Audit = dir, vehicles, auditMem
		saleStore, statsStore, auditStore = sales, sales, auditMem
		reports = reportstore.NewInMemory(sales, vehicles)
		txRunner = tx.NewMemoryRunner(gate, vehicles, sales, auditMem).WithTimeout(cfg.Database.TxTimeout)
		backendName = "memory"
	} else {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		sales := salestore.NewPostgres(db)
		auditPG := auditpostgres.New(db)

		e.DB = db
		e.Directory, e.Vehicles, e.Audit = dirstore.NewPostgres(db), invstore.NewPostgres(db), auditPG
		saleStore, statsStore, auditStore = sales, sales, auditPG
		reports = reportstore.NewPostgres(db)
		txRunner = postgres.NewTxRunner(db, cfg.Database.TxTimeout)
		backendName = "postgres"
	}

	var cache classservice.Cache = classstore.NewInMemoryCache()
	if cfg.Redis.URL != "" {
		rc, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.Redis = rc
		cache = classstore.NewRedisCache(rc.Client)
	}

	e.Registry = invservice.New(e.Vehicles, invservice.WithLogger(logger))
	e.Classification = classservice.New(statsStore, e.Directory,
		classservice.WithCache(cache, cfg.Classification.TTL),
		classservice.WithLogger(logger),
		classservice.WithMetrics(opts.ClassificationMetrics),
	)
	e.Sales = saleservice.New(saleStore, txRunner, e.Directory, e.Registry, calc,
		publisher.New(auditStore, publisher.WithLogger(logger), publisher.WithMetrics(opts.AuditMetrics)),
		saleservice.WithLogger(logger),
		saleservice.WithMetrics(opts.SaleMetrics),
		saleservice.WithCacheInvalidator(e.Classification),
	)
	e.Reports = reportservice.New(reports, e.Directory)

	logger.InfoContext(ctx, "engine ready",
		"backend", backendName,
		"classification_cache", cacheName(e.Redis),
		"seasonal_rate", cfg.Pricing.SeasonalRate,
		"frequent_client_rate", cfg.Pricing.FrequentClientRate,
	)
	return e, nil
}

func cacheName(rc *platformredis.Client) string {
	if rc != nil {
		return "redis"
	}
	return "memory"
}

// Ping reports reachability of the database and the Redis cache, when
// configured. The memory backend is always up.
func (e *Engine) Ping(ctx context.Context) error {
	if e.Redis != nil {
		if err := e.Redis.Health(ctx); err != nil {
			return err
		}
	}
	if e.DB == nil {
		return nil
	}
	return e.DB.PingContext(ctx)
}

func (e *Engine) Close() {
	if e.Redis != nil {
		_ = e.Redis.Close()
	}
	if e.DB != nil {
		_ = e.DB.Close()
	}
}
