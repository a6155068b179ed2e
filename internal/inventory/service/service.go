// Package service is the Inventory Registry: the only writer of vehicle
// availability state.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dealer/internal/inventory/models"
	"dealer/internal/platform/postgres"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/sentinel"
	"dealer/pkg/requestcontext"
)

// Store is the persistence contract for vehicles.
type Store interface {
	Create(ctx context.Context, v *models.Vehicle) error
	FindByID(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error)
	FindByIDs(ctx context.Context, ids []id.VehicleID) ([]*models.Vehicle, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vehicle, error)
	CompareAndSetState(ctx context.Context, vehicleID id.VehicleID, from, to models.AvailabilityState, expectedVersion int64, now time.Time) (*models.Vehicle, error)
}

// Registry validates and applies availability transitions.
type Registry struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func New(store Store, opts ...Option) *Registry {
	r := &Registry{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Transition moves a vehicle From -> To. It must run inside the caller's
// transaction so the change commits or rolls back with the sale.
func (r *Registry) Transition(ctx context.Context, req models.TransitionRequest) (*models.Vehicle, error) {
	if !req.From.CanTransitionTo(req.To) {
		return nil, r.rejectPair(ctx, req)
	}

	v, err := r.store.CompareAndSetState(ctx, req.VehicleID, req.From, req.To, req.ExpectedVersion, requestcontext.Now(ctx))
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Newf(dErrors.CodeReferenceNotFound, "vehicle %s not found", req.VehicleID)
	case errors.Is(err, sentinel.ErrInvalidState):
		actual := "in an unexpected state"
		if v != nil {
			actual = string(v.State)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidTransition,
			"vehicle "+req.VehicleID.String()+" is "+actual+", cannot move to "+string(req.To))
	case errors.Is(err, sentinel.ErrStale):
		return nil, dErrors.Wrap(err, dErrors.CodeConcurrentModification,
			"vehicle "+req.VehicleID.String()+" was modified concurrently")
	default:
		return nil, err
	}
}

// rejectPair reports an illegal From -> To pair against the vehicle's
// current state rather than the state the caller assumed.
func (r *Registry) rejectPair(ctx context.Context, req models.TransitionRequest) error {
	v, err := r.store.FindByID(ctx, req.VehicleID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeReferenceNotFound, "vehicle %s not found", req.VehicleID)
	case err != nil:
		return postgres.Classify(ctx, err, "load vehicle")
	}
	return dErrors.Newf(dErrors.CodeInvalidTransition,
		"vehicle %s is %s, cannot move to %s", req.VehicleID, v.State, req.To)
}

// Get returns a vehicle or ReferenceNotFound.
func (r *Registry) Get(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error) {
	v, err := r.store.FindByID(ctx, vehicleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeReferenceNotFound, "vehicle %s not found", vehicleID)
	}
	if err != nil {
		return nil, postgres.Classify(ctx, err, "load vehicle")
	}
	return v, nil
}

// GetMany returns the vehicles that exist among ids, in no particular order.
func (r *Registry) GetMany(ctx context.Context, ids []id.VehicleID) ([]*models.Vehicle, error) {
	vs, err := r.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "load vehicles")
	}
	return vs, nil
}

func (r *Registry) List(ctx context.Context, filter models.ListFilter) ([]*models.Vehicle, error) {
	vs, err := r.store.List(ctx, filter)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "list vehicles")
	}
	return vs, nil
}

// Intake adds a new AVAILABLE vehicle to stock.
func (r *Registry) Intake(ctx context.Context, v *models.Vehicle) error {
	if err := r.store.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Newf(dErrors.CodeValidation, "vehicle %s or its VIN already exists", v.ID)
		}
		return postgres.Classify(ctx, err, "store vehicle")
	}
	r.logger.InfoContext(ctx, "vehicle intake",
		"vehicle_id", v.ID,
		"brand", v.Brand,
		"model", v.Model,
	)
	return nil
}
