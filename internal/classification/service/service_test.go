package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dealer/internal/classification/models"
	"dealer/internal/classification/service"
	"dealer/internal/classification/service/mocks"
	"dealer/internal/classification/store"
	dirmodels "dealer/internal/directory/models"
	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/circuit"
	"dealer/pkg/platform/sentinel"
)

type ClassificationSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	stats    *mocks.MockSalesStats
	clients  *mocks.MockClients
	cache    *mocks.MockCache
	service  *service.Service
	clientID id.ClientID
}

func TestClassificationSuite(t *testing.T) {
	suite.Run(t, new(ClassificationSuite))
}

func (s *ClassificationSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.stats = mocks.NewMockSalesStats(s.ctrl)
	s.clients = mocks.NewMockClients(s.ctrl)
	s.cache = mocks.NewMockCache(s.ctrl)
	s.service = service.New(s.stats, s.clients, service.WithCache(s.cache, time.Minute))
	s.clientID = id.ClientID(uuid.New())
}

func (s *ClassificationSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ClassificationSuite) TestCacheHitSkipsStore() {
	cached := models.New(s.clientID, 5, pricing.MustParseMoney("90000.00"))
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(cached, nil)

	got, err := s.service.Classify(s.ctx, s.clientID)
	s.Require().NoError(err)
	s.Equal(models.TierVIP, got.Tier)
}

func (s *ClassificationSuite) TestMissComputesAndCaches() {
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(nil, sentinel.ErrNotFound)
	s.clients.EXPECT().FindClient(gomock.Any(), s.clientID).Return(&dirmodels.Client{ID: s.clientID}, nil)
	s.stats.EXPECT().ClientStats(gomock.Any(), s.clientID).Return(3, pricing.MustParseMoney("45000.00"), nil)
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any(), time.Minute).
		DoAndReturn(func(_ context.Context, c *models.Classification, _ time.Duration) error {
			s.Equal(models.TierFrequent, c.Tier)
			return nil
		})

	got, err := s.service.Classify(s.ctx, s.clientID)
	s.Require().NoError(err)
	s.Equal(models.TierFrequent, got.Tier)
	s.Equal(3, got.TotalActiveSales)
	s.Equal("45000.00", got.TotalSpend.String())
}

func (s *ClassificationSuite) TestCacheOutageFallsBackToStore() {
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(nil, errors.New("dial tcp: connection refused"))
	s.clients.EXPECT().FindClient(gomock.Any(), s.clientID).Return(&dirmodels.Client{ID: s.clientID}, nil)
	s.stats.EXPECT().ClientStats(gomock.Any(), s.clientID).Return(0, pricing.Zero(), nil)
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("dial tcp: connection refused"))

	got, err := s.service.Classify(s.ctx, s.clientID)
	s.Require().NoError(err)
	s.Equal(models.TierNew, got.Tier)
}

func (s *ClassificationSuite) TestUnknownClient() {
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(nil, sentinel.ErrNotFound)
	s.clients.EXPECT().FindClient(gomock.Any(), s.clientID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Classify(s.ctx, s.clientID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeReferenceNotFound))
}

func (s *ClassificationSuite) TestInvalidateDeletesEntry() {
	s.cache.EXPECT().Delete(gomock.Any(), s.clientID).Return(nil)
	s.service.Invalidate(s.ctx, s.clientID)
}

func (s *ClassificationSuite) expectStore(count int) {
	s.clients.EXPECT().FindClient(gomock.Any(), s.clientID).Return(&dirmodels.Client{ID: s.clientID}, nil).AnyTimes()
	s.stats.EXPECT().ClientStats(gomock.Any(), s.clientID).Return(count, pricing.Zero(), nil).AnyTimes()
}

func (s *ClassificationSuite) TestOpenBreakerSkipsCache() {
	outage := errors.New("dial tcp: connection refused")
	breaker := circuit.New("test-cache", circuit.WithFailureThreshold(3))
	svc := service.New(s.stats, s.clients,
		service.WithCache(s.cache, time.Minute),
		service.WithCacheBreaker(breaker),
		service.WithCacheRetryInterval(time.Hour),
	)
	s.expectStore(1)

	// Two Gets and one Set fail; the second Set is skipped once the breaker opens.
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(nil, outage).Times(2)
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(outage).Times(1)

	for range 2 {
		got, err := svc.Classify(s.ctx, s.clientID)
		s.Require().NoError(err)
		s.Equal(models.TierNew, got.Tier)
	}
	s.Require().True(breaker.IsOpen())

	s.Run("classify is served from the store without touching the cache", func() {
		for range 3 {
			got, err := svc.Classify(s.ctx, s.clientID)
			s.Require().NoError(err)
			s.Equal(1, got.TotalActiveSales)
		}
	})

	s.Run("invalidation still reaches the cache", func() {
		s.cache.EXPECT().Delete(gomock.Any(), s.clientID).Return(outage)
		svc.Invalidate(s.ctx, s.clientID)
	})
}

func (s *ClassificationSuite) TestTrialCallClosesBreaker() {
	breaker := circuit.New("test-cache", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))
	svc := service.New(s.stats, s.clients,
		service.WithCache(s.cache, time.Minute),
		service.WithCacheBreaker(breaker),
		service.WithCacheRetryInterval(0),
	)
	s.expectStore(2)

	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(nil, errors.New("i/o timeout"))
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("i/o timeout"))
	_, err := svc.Classify(s.ctx, s.clientID)
	s.Require().NoError(err)
	s.Require().True(breaker.IsOpen())

	cached := models.New(s.clientID, 2, pricing.MustParseMoney("100.00"))
	s.cache.EXPECT().Get(gomock.Any(), s.clientID).Return(cached, nil)
	got, err := svc.Classify(s.ctx, s.clientID)
	s.Require().NoError(err)
	s.Equal(2, got.TotalActiveSales)
	s.False(breaker.IsOpen())
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := store.NewInMemoryCache()
	clientID := id.ClientID(uuid.New())

	c := models.New(clientID, 1, pricing.MustParseMoney("100.00"))
	if err := cache.Set(ctx, c, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := cache.Get(ctx, clientID); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}
