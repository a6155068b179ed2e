package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dealer/internal/inventory/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
	"dealer/pkg/platform/tx"
)

// InMemory is the vehicle store used in development and unit tests. It takes
// part in tx.MemoryRunner transactions through the shared gate.
type InMemory struct {
	gate     *tx.Gate
	mu       sync.RWMutex
	vehicles map[id.VehicleID]*models.Vehicle
}

func NewInMemory(gate *tx.Gate) *InMemory {
	return &InMemory{gate: gate, vehicles: make(map[id.VehicleID]*models.Vehicle)}
}

func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[id.VehicleID]models.Vehicle, len(s.vehicles))
	for k, v := range s.vehicles {
		saved[k] = *v
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.vehicles = make(map[id.VehicleID]*models.Vehicle, len(saved))
		for k, v := range saved {
			s.vehicles[k] = &v
		}
	}
}

func (s *InMemory) Create(ctx context.Context, v *models.Vehicle) error {
	defer s.gate.Write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; ok {
		return sentinel.ErrConflict
	}
	if v.VIN != "" {
		for _, existing := range s.vehicles {
			if existing.VIN == v.VIN {
				return sentinel.ErrConflict
			}
		}
	}
	c := *v
	s.vehicles[v.ID] = &c
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (s *InMemory) FindByIDs(ctx context.Context, ids []id.VehicleID) ([]*models.Vehicle, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Vehicle, 0, len(ids))
	for _, vid := range ids {
		if v, ok := s.vehicles[vid]; ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

// List returns matching vehicles ordered by brand, model and year.
func (s *InMemory) List(ctx context.Context, filter models.ListFilter) ([]*models.Vehicle, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	out := make([]*models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if filter.State != "" && v.State != filter.State {
			continue
		}
		if filter.Brand != "" && !strings.EqualFold(v.Brand, filter.Brand) {
			continue
		}
		if filter.VehicleType != "" && !strings.EqualFold(v.VehicleType, filter.VehicleType) {
			continue
		}
		c := *v
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.ID.String() < b.ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CompareAndSetState moves the vehicle from one state to another when the
// current state (and version, if expectedVersion > 0) still match. On
// mismatch the current vehicle is returned with ErrInvalidState or ErrStale.
func (s *InMemory) CompareAndSetState(ctx context.Context, vehicleID id.VehicleID, from, to models.AvailabilityState, expectedVersion int64, now time.Time) (*models.Vehicle, error) {
	defer s.gate.Write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if v.State != from {
		c := *v
		return &c, sentinel.ErrInvalidState
	}
	if expectedVersion > 0 && v.Version != expectedVersion {
		c := *v
		return &c, sentinel.ErrStale
	}
	v.State = to
	v.Version++
	v.UpdatedAt = now
	c := *v
	return &c, nil
}
