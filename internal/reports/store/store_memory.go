package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	invmodels "dealer/internal/inventory/models"
	invstore "dealer/internal/inventory/store"
	"dealer/internal/pricing"
	"dealer/internal/reports/models"
	salemodels "dealer/internal/sale/models"
	salestore "dealer/internal/sale/store"
	id "dealer/pkg/domain"
)

// InMemory computes reports over the in-memory sale and vehicle stores.
type InMemory struct {
	sales    *salestore.InMemory
	vehicles *invstore.InMemory
}

func NewInMemory(sales *salestore.InMemory, vehicles *invstore.InMemory) *InMemory {
	return &InMemory{sales: sales, vehicles: vehicles}
}

func (s *InMemory) vehicleIndex(ctx context.Context, items map[id.SaleID][]salemodels.LineItem) (map[id.VehicleID]*invmodels.Vehicle, error) {
	var ids []id.VehicleID
	for _, its := range items {
		for _, it := range its {
			ids = append(ids, it.VehicleID)
		}
	}
	vs, err := s.vehicles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[id.VehicleID]*invmodels.Vehicle, len(vs))
	for _, v := range vs {
		out[v.ID] = v
	}
	return out, nil
}

func saleIDs(sales []*salemodels.Sale) []id.SaleID {
	out := make([]id.SaleID, len(sales))
	for i, sale := range sales {
		out[i] = sale.ID
	}
	return out
}

func (s *InMemory) ClientHistory(ctx context.Context, clientID id.ClientID) ([]models.HistoryEntry, error) {
	sales, err := s.sales.List(ctx, salemodels.ListFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	items, err := s.sales.LineItemsFor(ctx, saleIDs(sales))
	if err != nil {
		return nil, err
	}
	vehicles, err := s.vehicleIndex(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]models.HistoryEntry, 0, len(sales))
	for _, sale := range sales {
		entry := models.HistoryEntry{
			SaleID:   sale.ID,
			SaleDate: sale.SaleDate,
			Total:    sale.Total,
			Discount: sale.Discount,
			Status:   string(sale.Status),
			Vehicles: []string{},
		}
		for _, it := range items[sale.ID] {
			entry.VehicleCount++
			if v, ok := vehicles[it.VehicleID]; ok {
				entry.Vehicles = append(entry.Vehicles, v.DisplayName())
			}
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (s *InMemory) Availability(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityRow, error) {
	vs, err := s.vehicles.List(ctx, invmodels.ListFilter{
		State:       invmodels.StateAvailable,
		Brand:       filter.Brand,
		VehicleType: filter.VehicleType,
	})
	if err != nil {
		return nil, err
	}
	type groupKey struct{ brand, vtype string }
	groups := map[groupKey]*models.AvailabilityRow{}
	var order []groupKey
	for _, v := range vs {
		if !filter.IntakeFrom.IsZero() && v.IntakeDate.Before(filter.IntakeFrom) {
			continue
		}
		if !filter.IntakeTo.IsZero() && !v.IntakeDate.Before(filter.IntakeTo) {
			continue
		}
		k := groupKey{v.Brand, v.VehicleType}
		row, ok := groups[k]
		if !ok {
			row = &models.AvailabilityRow{Brand: v.Brand, VehicleType: v.VehicleType, TotalValue: pricing.Zero()}
			groups[k] = row
			order = append(order, k)
		}
		row.Count++
		row.TotalValue = row.TotalValue.Add(v.UnitPrice)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].brand != order[j].brand {
			return order[i].brand < order[j].brand
		}
		return order[i].vtype < order[j].vtype
	})
	out := make([]models.AvailabilityRow, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out, nil
}

type brandKey struct {
	month time.Month
	brand string
}

// activeBrandTotals credits each ACTIVE sale's total once to every brand it
// contains, optionally split by sale month.
func (s *InMemory) activeBrandTotals(ctx context.Context, from, to time.Time, byMonth bool) (map[brandKey]*models.BrandTotal, error) {
	sales, err := s.sales.List(ctx, salemodels.ListFilter{Status: salemodels.StatusActive, From: from, To: to})
	if err != nil {
		return nil, err
	}
	items, err := s.sales.LineItemsFor(ctx, saleIDs(sales))
	if err != nil {
		return nil, err
	}
	vehicles, err := s.vehicleIndex(ctx, items)
	if err != nil {
		return nil, err
	}

	totals := map[brandKey]*models.BrandTotal{}
	for _, sale := range sales {
		seen := map[string]bool{}
		for _, it := range items[sale.ID] {
			v, ok := vehicles[it.VehicleID]
			if !ok {
				return nil, fmt.Errorf("line item %s references missing vehicle %s", it.ID, it.VehicleID)
			}
			key := brandKey{brand: strings.TrimSpace(v.Brand)}
			if byMonth {
				key.month = sale.SaleDate.Month()
			}
			t, ok := totals[key]
			if !ok {
				t = &models.BrandTotal{Brand: key.brand, TotalAmount: pricing.Zero()}
				totals[key] = t
			}
			t.VehiclesCount += it.Quantity
			if !seen[key.brand] {
				seen[key.brand] = true
				t.SalesCount++
				t.TotalAmount = t.TotalAmount.Add(sale.Total)
			}
		}
	}
	return totals, nil
}

func (s *InMemory) BrandTotals(ctx context.Context, from, to time.Time) ([]models.BrandTotal, error) {
	totals, err := s.activeBrandTotals(ctx, from, to, false)
	if err != nil {
		return nil, err
	}
	out := make([]models.BrandTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

func (s *InMemory) MonthlyBrandTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyBrandSales, error) {
	totals, err := s.activeBrandTotals(ctx, from, to, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.MonthlyBrandSales, 0, len(totals))
	for k, t := range totals {
		out = append(out, models.MonthlyBrandSales{
			Month:         int(k.month),
			Brand:         t.Brand,
			SalesCount:    t.SalesCount,
			VehiclesCount: t.VehiclesCount,
			TotalAmount:   t.TotalAmount,
		})
	}
	return out, nil
}

func (s *InMemory) SalesTotals(ctx context.Context, from, to time.Time) (int, pricing.Money, error) {
	sales, err := s.sales.List(ctx, salemodels.ListFilter{Status: salemodels.StatusActive, From: from, To: to})
	if err != nil {
		return 0, pricing.Zero(), err
	}
	revenue := pricing.Zero()
	for _, sale := range sales {
		revenue = revenue.Add(sale.Total)
	}
	return len(sales), revenue, nil
}

func (s *InMemory) CountAvailableBefore(ctx context.Context, cutoff time.Time) (int, error) {
	vs, err := s.vehicles.List(ctx, invmodels.ListFilter{State: invmodels.StateAvailable})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range vs {
		if v.IntakeDate.Before(cutoff) {
			n++
		}
	}
	return n, nil
}
