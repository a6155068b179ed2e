// Package service is the Client Classification Engine. Classify is a pure
// read over ACTIVE sales; results may be served from a short-lived cache.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	classmetrics "dealer/internal/classification/metrics"
	"dealer/internal/classification/models"
	dirmodels "dealer/internal/directory/models"
	"dealer/internal/platform/postgres"
	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/circuit"
	"dealer/pkg/platform/sentinel"
)

const (
	defaultCacheTTL      = 30 * time.Second
	defaultRetryInterval = 5 * time.Second
)

// SalesStats aggregates a client's ACTIVE sales.
type SalesStats interface {
	ClientStats(ctx context.Context, clientID id.ClientID) (int, pricing.Money, error)
}

type Clients interface {
	FindClient(ctx context.Context, clientID id.ClientID) (*dirmodels.Client, error)
}

// Cache stores computed classifications. Get returns sentinel.ErrNotFound
// on a miss.
type Cache interface {
	Get(ctx context.Context, clientID id.ClientID) (*models.Classification, error)
	Set(ctx context.Context, value *models.Classification, ttl time.Duration) error
	Delete(ctx context.Context, clientID id.ClientID) error
}

type Service struct {
	stats   SalesStats
	clients Clients
	cache   Cache
	ttl     time.Duration
	breaker *circuit.Breaker
	// nextTrial is the earliest time (unix nanos) an open breaker lets one
	// cache call through.
	nextTrial     atomic.Int64
	retryInterval time.Duration
	now           func() time.Time
	group         singleflight.Group
	metrics       *classmetrics.Metrics
	logger        *slog.Logger
}

type Option func(*Service)

// WithCache enables read-through caching. A non-positive ttl uses 30s.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCacheBreaker replaces the default cache breaker (open after 5
// failures, close after 3 successes).
func WithCacheBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithCacheRetryInterval sets how often an open breaker lets a single cache
// call through. Defaults to 5s.
func WithCacheRetryInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retryInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *classmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(stats SalesStats, clients Clients, opts ...Option) *Service {
	s := &Service{
		stats:         stats,
		clients:       clients,
		ttl:           defaultCacheTTL,
		breaker:       circuit.New("classification-cache"),
		retryInterval: defaultRetryInterval,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify returns the client's tier, ACTIVE sale count and spend.
// Concurrent misses for one client share a single computation.
func (s *Service) Classify(ctx context.Context, clientID id.ClientID) (*models.Classification, error) {
	if cached, ok := s.fromCache(ctx, clientID); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(clientID.String(), func() (any, error) {
		return s.compute(ctx, clientID)
	})
	if err != nil {
		return nil, err
	}
	c := *v.(*models.Classification)
	return &c, nil
}

func (s *Service) compute(ctx context.Context, clientID id.ClientID) (*models.Classification, error) {
	if _, err := s.clients.FindClient(ctx, clientID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeReferenceNotFound, "client %s not found", clientID)
		}
		return nil, postgres.Classify(ctx, err, "load client")
	}

	count, spend, err := s.stats.ClientStats(ctx, clientID)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "aggregate client sales")
	}
	result := models.New(clientID, count, spend)
	s.metrics.IncrementTier(string(result.Tier))

	if s.cacheAvailable() {
		if err := s.cache.Set(ctx, result, s.ttl); err != nil {
			s.cacheFailed(ctx, "set", clientID, err)
		} else {
			s.cacheOK(ctx)
		}
	}
	return result, nil
}

func (s *Service) fromCache(ctx context.Context, clientID id.ClientID) (*models.Classification, bool) {
	if !s.cacheAvailable() {
		if s.cache != nil {
			s.metrics.IncrementMiss()
		}
		return nil, false
	}
	cached, err := s.cache.Get(ctx, clientID)
	switch {
	case err == nil:
		s.cacheOK(ctx)
		s.metrics.IncrementHit()
		return cached, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.cacheOK(ctx)
	default:
		s.cacheFailed(ctx, "get", clientID, err)
	}
	s.metrics.IncrementMiss()
	return nil, false
}

// Invalidate drops the cached classification. Deletes are attempted even
// while the breaker is open. Failures are logged only; the entry still
// expires by TTL.
func (s *Service) Invalidate(ctx context.Context, clientID id.ClientID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, clientID); err != nil {
		s.cacheFailed(ctx, "delete", clientID, err)
		return
	}
	s.cacheOK(ctx)
}

// cacheAvailable reports whether the next cache call should go out. With the
// breaker open, one call per retry interval is let through.
func (s *Service) cacheAvailable() bool {
	if s.cache == nil {
		return false
	}
	if !s.breaker.IsOpen() {
		return true
	}
	next := s.nextTrial.Load()
	now := s.now().UnixNano()
	return now >= next && s.nextTrial.CompareAndSwap(next, now+int64(s.retryInterval))
}

func (s *Service) cacheOK(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "classification cache recovered", "breaker", s.breaker.Name())
	}
}

func (s *Service) cacheFailed(ctx context.Context, op string, clientID id.ClientID, err error) {
	s.metrics.IncrementCacheError(op)
	_, change := s.breaker.RecordFailure()
	if change.Opened {
		s.nextTrial.Store(s.now().Add(s.retryInterval).UnixNano())
		s.logger.WarnContext(ctx, "classification cache degraded, serving from store",
			"breaker", s.breaker.Name(),
		)
	}
	s.logger.DebugContext(ctx, "classification cache error",
		"op", op,
		"client_id", clientID,
		"error", err,
	)
}
