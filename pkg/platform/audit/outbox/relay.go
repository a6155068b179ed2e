package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dealer/pkg/platform/circuit"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Relay polls the outbox and publishes pending entries in creation order.
// A batch stops at the first publish failure; rows published before the
// failure are marked, the rest stay pending for the next tick.
type Relay struct {
	runner    TxRunner
	store     Store
	publisher Publisher
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *Metrics
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) { r.breaker = b }
}

func NewRelay(runner TxRunner, store Store, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		runner:    runner,
		store:     store,
		publisher: publisher,
		breaker:   circuit.New("audit-outbox", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:    slog.Default(),
		batchSize: defaultBatchSize,
		interval:  defaultPollInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.WarnContext(ctx, "outbox relay tick failed", "error", err)
			}
		}
	}
}

// RunOnce publishes at most one batch and returns how many entries were
// published. While the breaker is open only a single entry is attempted.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	limit := r.batchSize
	if r.breaker.IsOpen() {
		limit = 1
	}

	var (
		published  int
		publishErr error
	)
	err := r.runner.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := r.store.ClaimPending(ctx, limit)
		if err != nil {
			return err
		}
		done := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			if err := r.publisher.Publish(ctx, e); err != nil {
				publishErr = err
				r.recordFailure(ctx, e, err)
				break
			}
			r.recordSuccess(ctx)
			done = append(done, e.ID)
		}
		if err := r.store.MarkPublished(ctx, done, r.now()); err != nil {
			return err
		}
		published = len(done)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if r.metrics != nil {
		r.metrics.Published.Add(float64(published))
	}
	return published, publishErr
}

func (r *Relay) recordFailure(ctx context.Context, e Entry, err error) {
	if r.metrics != nil {
		r.metrics.PublishFailures.Inc()
	}
	_, change := r.breaker.RecordFailure()
	if change.Opened {
		if r.metrics != nil {
			r.metrics.CircuitBreakerState.Set(1)
		}
		r.logger.ErrorContext(ctx, "audit outbox circuit opened",
			"entry_id", e.ID,
			"event_type", e.EventType,
			"error", err,
		)
		return
	}
	r.logger.WarnContext(ctx, "audit outbox publish failed",
		"entry_id", e.ID,
		"event_type", e.EventType,
		"error", err,
	)
}

func (r *Relay) recordSuccess(ctx context.Context) {
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		if r.metrics != nil {
			r.metrics.CircuitBreakerState.Set(0)
		}
		r.logger.InfoContext(ctx, "audit outbox circuit closed")
	}
}
