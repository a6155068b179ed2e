package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"dealer/internal/pricing"
	"dealer/internal/sale/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
	"dealer/pkg/platform/tx"
)

// InMemory keeps sales and line items in maps. Line items are stored per
// sale and are never deleted, mirroring ON DELETE RESTRICT.
type InMemory struct {
	gate  *tx.Gate
	mu    sync.RWMutex
	sales map[id.SaleID]*models.Sale
	items map[id.SaleID][]models.LineItem
}

func NewInMemory(gate *tx.Gate) *InMemory {
	return &InMemory{
		gate:  gate,
		sales: make(map[id.SaleID]*models.Sale),
		items: make(map[id.SaleID][]models.LineItem),
	}
}

func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	sales := make(map[id.SaleID]models.Sale, len(s.sales))
	for k, v := range s.sales {
		sales[k] = *v
	}
	items := make(map[id.SaleID][]models.LineItem, len(s.items))
	for k, v := range s.items {
		items[k] = append([]models.LineItem(nil), v...)
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sales = make(map[id.SaleID]*models.Sale, len(sales))
		for k, v := range sales {
			s.sales[k] = &v
		}
		s.items = items
	}
}

func (s *InMemory) Create(ctx context.Context, sale *models.Sale, items []models.LineItem) error {
	defer s.gate.Write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[sale.ID]; ok {
		return sentinel.ErrConflict
	}
	seen := make(map[id.VehicleID]struct{}, len(items))
	for _, it := range items {
		if it.SaleID != sale.ID {
			return sentinel.ErrConflict
		}
		if _, dup := seen[it.VehicleID]; dup {
			return sentinel.ErrConflict
		}
		seen[it.VehicleID] = struct{}{}
	}
	c := *sale
	s.sales[sale.ID] = &c
	s.items[sale.ID] = append([]models.LineItem(nil), items...)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *sale
	return &c, nil
}

// FindByIDForUpdate is FindByID: the memory runner already holds the gate
// exclusively for the whole transaction.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	return s.FindByID(ctx, saleID)
}

func (s *InMemory) LineItems(ctx context.Context, saleID id.SaleID) ([]models.LineItem, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LineItem(nil), s.items[saleID]...), nil
}

// LineItemsFor returns the line items of every given sale keyed by sale.
func (s *InMemory) LineItemsFor(ctx context.Context, saleIDs []id.SaleID) (map[id.SaleID][]models.LineItem, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.SaleID][]models.LineItem, len(saleIDs))
	for _, sid := range saleIDs {
		if items, ok := s.items[sid]; ok {
			out[sid] = append([]models.LineItem(nil), items...)
		}
	}
	return out, nil
}

// UpdateStatus moves a sale from one status to another when it is still in
// from. On mismatch the current sale is returned with ErrInvalidState.
func (s *InMemory) UpdateStatus(ctx context.Context, saleID id.SaleID, from, to models.Status, now time.Time) (*models.Sale, error) {
	defer s.gate.Write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if sale.Status != from {
		c := *sale
		return &c, sentinel.ErrInvalidState
	}
	sale.Status = to
	sale.UpdatedAt = now
	c := *sale
	return &c, nil
}

// List returns matching sales, newest first.
func (s *InMemory) List(ctx context.Context, filter models.ListFilter) ([]*models.Sale, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	out := make([]*models.Sale, 0)
	for _, sale := range s.sales {
		if !filter.ClientID.IsNil() && sale.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && sale.SaleDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sale.SaleDate.Before(filter.To) {
			continue
		}
		c := *sale
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ClientStats counts a client's ACTIVE sales and sums their totals.
func (s *InMemory) ClientStats(ctx context.Context, clientID id.ClientID) (int, pricing.Money, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	count, spend := 0, pricing.Zero()
	for _, sale := range s.sales {
		if sale.ClientID == clientID && sale.Status == models.StatusActive {
			count++
			spend = spend.Add(sale.Total)
		}
	}
	return count, spend, nil
}

// ActiveSaleCount returns how many ACTIVE sales reference vehicleID.
func (s *InMemory) ActiveSaleCount(ctx context.Context, vehicleID id.VehicleID) (int, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for sid, items := range s.items {
		if s.sales[sid].Status != models.StatusActive {
			continue
		}
		for _, it := range items {
			if it.VehicleID == vehicleID {
				n++
			}
		}
	}
	return n, nil
}
