package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dealer/internal/inventory/models"
	"dealer/internal/inventory/store"
	"dealer/internal/pricing"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/tx"
)

type RegistrySuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemory
	registry *Registry
	vehicle  *models.Vehicle
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory(tx.NewGate())
	s.registry = New(s.store)

	v, err := models.NewVehicle(id.VehicleID(uuid.New()), "Toyota", "Corolla", 2023, "Sedan",
		pricing.MustParseMoney("20000.00"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Intake(s.ctx, v))
	s.vehicle = v
}

func (s *RegistrySuite) TestTransition() {
	s.Run("available to sold bumps the version", func() {
		v, err := s.registry.Transition(s.ctx, models.TransitionRequest{
			VehicleID: s.vehicle.ID, From: models.StateAvailable, To: models.StateSold, ExpectedVersion: 1,
		})
		s.Require().NoError(err)
		s.Equal(models.StateSold, v.State)
		s.Equal(int64(2), v.Version)
	})

	s.Run("wrong current state is an invalid transition", func() {
		_, err := s.registry.Transition(s.ctx, models.TransitionRequest{
			VehicleID: s.vehicle.ID, From: models.StateAvailable, To: models.StateSold,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Contains(err.Error(), "SOLD")
	})

	s.Run("stale version is a concurrent modification", func() {
		_, err := s.registry.Transition(s.ctx, models.TransitionRequest{
			VehicleID: s.vehicle.ID, From: models.StateSold, To: models.StateAvailable, ExpectedVersion: 1,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConcurrentModification))
	})

	s.Run("sold back to available", func() {
		v, err := s.registry.Transition(s.ctx, models.TransitionRequest{
			VehicleID: s.vehicle.ID, From: models.StateSold, To: models.StateAvailable,
		})
		s.Require().NoError(err)
		s.Equal(models.StateAvailable, v.State)
	})
}

func (s *RegistrySuite) TestIllegalPairsRejectedBeforeStore() {
	for _, pair := range [][2]models.AvailabilityState{
		{models.StateAvailable, models.StateReserved},
		{models.StateReserved, models.StateSold},
		{models.StateSold, models.StateSold},
	} {
		_, err := s.registry.Transition(s.ctx, models.TransitionRequest{VehicleID: s.vehicle.ID, From: pair[0], To: pair[1]})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "%s->%s", pair[0], pair[1])
	}
	v, err := s.registry.Get(s.ctx, s.vehicle.ID)
	s.Require().NoError(err)
	s.Equal(models.StateAvailable, v.State)
}

func (s *RegistrySuite) TestUnknownVehicle() {
	missing := id.VehicleID(uuid.New())

	_, err := s.registry.Get(s.ctx, missing)
	s.True(dErrors.HasCode(err, dErrors.CodeReferenceNotFound))

	_, err = s.registry.Transition(s.ctx, models.TransitionRequest{VehicleID: missing, From: models.StateAvailable, To: models.StateSold})
	s.True(dErrors.HasCode(err, dErrors.CodeReferenceNotFound))
}

func (s *RegistrySuite) TestTransitionRollsBackWithTransaction() {
	runner := tx.NewMemoryRunner(tx.NewGate(), s.store)
	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		if _, err := s.registry.Transition(ctx, models.TransitionRequest{
			VehicleID: s.vehicle.ID, From: models.StateAvailable, To: models.StateSold,
		}); err != nil {
			return err
		}
		return dErrors.New(dErrors.CodeStorageFailure, "sale insert failed")
	})
	s.Require().Error(err)

	v, err := s.registry.Get(s.ctx, s.vehicle.ID)
	s.Require().NoError(err)
	s.Equal(models.StateAvailable, v.State)
	s.Equal(int64(1), v.Version)
}

func (s *RegistrySuite) TestListFilters() {
	other, err := models.NewVehicle(id.VehicleID(uuid.New()), "Ford", "Ranger", 2022, "Pickup",
		pricing.MustParseMoney("35000.00"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Intake(s.ctx, other))

	all, err := s.registry.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal("Ford", all[0].Brand)

	toyotas, err := s.registry.List(s.ctx, models.ListFilter{Brand: "toyota"})
	s.Require().NoError(err)
	s.Len(toyotas, 1)

	sold, err := s.registry.List(s.ctx, models.ListFilter{State: models.StateSold})
	s.Require().NoError(err)
	s.Empty(sold)
}

func (s *RegistrySuite) TestIllegalPairNamesCurrentState() {
	_, err := s.registry.Transition(s.ctx, models.TransitionRequest{
		VehicleID: s.vehicle.ID, From: models.StateSold, To: models.StateSold,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	s.Contains(dErrors.MessageOf(err), "is AVAILABLE, cannot move to SOLD")
}

// blockingStore holds reads until the caller's context ends.
type blockingStore struct {
	*store.InMemory
}

func (b blockingStore) FindByID(ctx context.Context, _ id.VehicleID) (*models.Vehicle, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b blockingStore) FindByIDs(ctx context.Context, _ []id.VehicleID) ([]*models.Vehicle, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *RegistrySuite) TestExpiredDeadlineIsTimeout() {
	registry := New(blockingStore{InMemory: s.store})

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel()
	_, err := registry.Get(ctx, s.vehicle.ID)
	s.Require().Error(err)
	s.Equal(dErrors.CodeTimeout, dErrors.CodeOf(err))

	ctx2, cancel2 := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel2()
	_, err = registry.GetMany(ctx2, []id.VehicleID{s.vehicle.ID})
	s.Equal(dErrors.CodeTimeout, dErrors.CodeOf(err))
}
