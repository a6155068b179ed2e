package outbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dealer/pkg/platform/audit/outbox"
	"dealer/pkg/platform/audit/outbox/mocks"
	"dealer/pkg/platform/circuit"
)

// passthroughRunner runs fn directly; the store mock stands in for the transaction.
type passthroughRunner struct{}

func (passthroughRunner) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type RelaySuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
	breaker   *circuit.Breaker
	relay     *outbox.Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.breaker = circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	s.relay = outbox.NewRelay(passthroughRunner{}, s.store, s.publisher,
		outbox.WithBatchSize(10),
		outbox.WithBreaker(s.breaker),
		outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *RelaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func entries(n int) []outbox.Entry {
	out := make([]outbox.Entry, n)
	for i := range out {
		out[i] = outbox.Entry{ID: uuid.New(), EventType: "audit.record", Payload: []byte(`{}`)}
	}
	return out
}

func (s *RelaySuite) TestRunOnce() {
	ctx := context.Background()

	s.Run("publishes and marks every claimed entry", func() {
		batch := entries(3)
		s.store.EXPECT().ClaimPending(gomock.Any(), 10).Return(batch, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(3)
		s.store.EXPECT().MarkPublished(gomock.Any(), []uuid.UUID{batch[0].ID, batch[1].ID, batch[2].ID}, gomock.Any()).Return(nil)

		n, err := s.relay.RunOnce(ctx)
		s.Require().NoError(err)
		s.Equal(3, n)
	})

	s.Run("stops at first failure and marks only published entries", func() {
		batch := entries(3)
		brokerDown := errors.New("broker unavailable")
		s.store.EXPECT().ClaimPending(gomock.Any(), 10).Return(batch, nil)
		gomock.InOrder(
			s.publisher.EXPECT().Publish(gomock.Any(), batch[0]).Return(nil),
			s.publisher.EXPECT().Publish(gomock.Any(), batch[1]).Return(brokerDown),
		)
		s.store.EXPECT().MarkPublished(gomock.Any(), []uuid.UUID{batch[0].ID}, gomock.Any()).Return(nil)

		n, err := s.relay.RunOnce(ctx)
		s.Require().ErrorIs(err, brokerDown)
		s.Equal(1, n)
	})

	s.Run("claim failure is returned without publishing", func() {
		s.store.EXPECT().ClaimPending(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		n, err := s.relay.RunOnce(ctx)
		s.Require().Error(err)
		s.Zero(n)
	})
}

func (s *RelaySuite) TestOpenCircuitTriesSingleEntry() {
	ctx := context.Background()
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.Require().True(s.breaker.IsOpen())

	batch := entries(1)
	s.store.EXPECT().ClaimPending(gomock.Any(), 1).Return(batch, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), batch[0]).Return(nil)
	s.store.EXPECT().MarkPublished(gomock.Any(), []uuid.UUID{batch[0].ID}, gomock.Any()).Return(nil)

	n, err := s.relay.RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.False(s.breaker.IsOpen())
}
