package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"dealer/internal/app"
	classmetrics "dealer/internal/classification/metrics"
	jwttoken "dealer/internal/jwt_token"
	"dealer/internal/platform/config"
	"dealer/internal/platform/httpserver"
	"dealer/internal/platform/kafka"
	"dealer/internal/platform/logger"
	"dealer/internal/platform/metrics"
	"dealer/internal/platform/postgres"
	salemetrics "dealer/internal/sale/metrics"
	httptransport "dealer/internal/transport/http"
	"dealer/pkg/platform/audit/outbox"
	"dealer/pkg/platform/audit/publisher"
)

const startupTimeout = 30 * time.Second

// main wires the engine, the HTTP adapter and the audit outbox relay, and
// keeps them running until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	engine, err := app.Build(startCtx, cfg, log, app.Options{
		SaleMetrics:           salemetrics.New(),
		ClassificationMetrics: classmetrics.New(),
		AuditMetrics:          publisher.NewMetrics(),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.DB != nil {
		applied, err := postgres.Migrate(startCtx, engine.DB)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Info("migrations applied", "migrations", applied)
		}
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	router := httptransport.NewRouter(httptransport.Deps{
		Sales:          engine.Sales,
		Classification: engine.Classification,
		Inventory:      engine.Registry,
		Reports:        engine.Reports,
		Audit:          engine.Audit,
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		Health:         engine,
		Metrics:        metrics.New(),
		Logger:         log,
	})
	srv := httpserver.New(cfg.Server, router)

	relay, producer, err := buildRelay(startCtx, cfg, engine, log)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting dealer server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if relay != nil {
		g.Go(func() error {
			err := relay.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// buildRelay starts the outbox relay only for the PostgreSQL backend with
// Kafka brokers configured; the memory backend has no outbox table.
func buildRelay(ctx context.Context, cfg config.Config, engine *app.Engine, log *slog.Logger) (*outbox.Relay, *kafka.Producer, error) {
	if engine.DB == nil || len(cfg.Kafka.Brokers) == 0 {
		log.Info("audit outbox relay disabled")
		return nil, nil, nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
		producer.Close()
		return nil, nil, err
	}
	relay := outbox.NewRelay(
		postgres.NewTxRunner(engine.DB, cfg.Database.TxTimeout),
		outbox.NewPostgresStore(engine.DB),
		producer,
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics()),
		outbox.WithBatchSize(cfg.Kafka.BatchSize),
		outbox.WithPollInterval(cfg.Kafka.PollInterval),
	)
	log.Info("audit outbox relay enabled", "topic", cfg.Kafka.AuditTopic, "brokers", cfg.Kafka.Brokers)
	return relay, producer, nil
}
