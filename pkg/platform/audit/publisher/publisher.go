// Package publisher is the write path into the audit log.
//
// Record is fail-closed: it runs inside the caller's transaction and a
// failure must abort the business operation. RecordError runs after a
// rollback; its failure is logged and counted but never replaces the
// error that caused it.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "dealer/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for audit persistence.
type Metrics struct {
	RecordsWritten  prometheus.Counter
	ErrorsWritten   prometheus.Counter
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		RecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_audit_records_written_total",
			Help: "Total number of audit records written",
		}),
		ErrorsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_audit_error_events_written_total",
			Help: "Total number of error events written",
		}),
		PersistFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dealer_audit_persist_failures_total",
			Help: "Total number of audit persistence failures by kind",
		}, []string{"kind"}),
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dealer_audit_persist_duration_seconds",
			Help:    "Time spent persisting audit records",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// Publisher writes audit records and error events to a Store.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Record synchronously appends a record. The caller MUST fail its operation
// when an error is returned.
func (p *Publisher) Record(ctx context.Context, record audit.Record) error {
	start := time.Now()

	if record.EntityID == "" {
		return fmt.Errorf("audit record requires entity id")
	}
	if record.Action == "" {
		return fmt.Errorf("audit record requires action")
	}
	if record.ID == "" {
		record.ID = audit.NewID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := p.store.Append(ctx, record); err != nil {
		if p.metrics != nil {
			p.metrics.PersistFailures.WithLabelValues("record").Inc()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: audit record persistence failed",
				"entity_type", record.EntityType,
				"entity_id", record.EntityID,
				"action", record.Action,
				"error", err,
			)
		}
		return fmt.Errorf("audit record persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.PersistDuration.Observe(time.Since(start).Seconds())
		p.metrics.RecordsWritten.Inc()
	}
	return nil
}

// RecordError appends an error event. It must be called outside the failed
// transaction so the event is not rolled back with it.
func (p *Publisher) RecordError(ctx context.Context, event audit.ErrorEvent) error {
	if event.ID == "" {
		event.ID = audit.NewID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := p.store.AppendError(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.PersistFailures.WithLabelValues("error_event").Inc()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "error event persistence failed",
				"origin", event.Origin,
				"code", event.Code,
				"detail", event.Detail,
				"error", err,
			)
		}
		return fmt.Errorf("error event persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ErrorsWritten.Inc()
	}
	return nil
}
