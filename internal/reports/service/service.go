// Package service assembles read-only reports: client history, stock
// availability, top brands, sales summary and aging stock.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	dirmodels "dealer/internal/directory/models"
	"dealer/internal/platform/postgres"
	"dealer/internal/pricing"
	"dealer/internal/reports/models"
	id "dealer/pkg/domain"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/sentinel"
)

const (
	DefaultTopBrands    = 5
	DefaultAgingDays    = 90
	minReportYear       = 1900
	maxReportYearOffset = 1
	percent             = 100
	shareDecimalPlaces  = 2
)

type Store interface {
	ClientHistory(ctx context.Context, clientID id.ClientID) ([]models.HistoryEntry, error)
	Availability(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityRow, error)
	BrandTotals(ctx context.Context, from, to time.Time) ([]models.BrandTotal, error)
	MonthlyBrandTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyBrandSales, error)
	SalesTotals(ctx context.Context, from, to time.Time) (int, pricing.Money, error)
	CountAvailableBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type Clients interface {
	FindClient(ctx context.Context, clientID id.ClientID) (*dirmodels.Client, error)
}

type Service struct {
	store   Store
	clients Clients
	now     func() time.Time
}

func New(store Store, clients Clients) *Service {
	return &Service{store: store, clients: clients, now: time.Now}
}

func (s *Service) ClientHistory(ctx context.Context, clientID id.ClientID) ([]models.HistoryEntry, error) {
	if _, err := s.clients.FindClient(ctx, clientID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeReferenceNotFound, "client %s not found", clientID)
		}
		return nil, postgres.Classify(ctx, err, "load client")
	}
	out, err := s.store.ClientHistory(ctx, clientID)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "client history")
	}
	return out, nil
}

func (s *Service) Availability(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityRow, error) {
	if !filter.IntakeFrom.IsZero() && !filter.IntakeTo.IsZero() && filter.IntakeTo.Before(filter.IntakeFrom) {
		return nil, dErrors.New(dErrors.CodeValidation, "intake range end is before its start")
	}
	rows, err := s.store.Availability(ctx, filter)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "availability report")
	}
	for i := range rows {
		if rows[i].Count > 0 {
			rows[i].AveragePrice = rows[i].TotalValue.DivInt(rows[i].Count).RoundCents()
		}
	}
	return rows, nil
}

func (s *Service) yearRange(year int) (time.Time, time.Time, error) {
	if year < minReportYear || year > s.now().Year()+maxReportYearOffset {
		return time.Time{}, time.Time{}, dErrors.Newf(dErrors.CodeValidation, "year %d is out of range", year)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0), nil
}

// SalesByMonthAndBrand breaks a year's ACTIVE sales down by month and brand,
// ordered by month then brand. Months without sales are omitted.
func (s *Service) SalesByMonthAndBrand(ctx context.Context, year int) ([]models.MonthlyBrandSales, error) {
	from, to, err := s.yearRange(year)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.MonthlyBrandTotals(ctx, from, to)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "monthly brand sales")
	}
	for i := range rows {
		rows[i].Year = year
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Brand < rows[j].Brand
	})
	return rows, nil
}

// TopBrands ranks brands by ACTIVE sale revenue in year. Ties are broken by
// sales count, then name.
func (s *Service) TopBrands(ctx context.Context, year, limit int) ([]models.BrandRanking, error) {
	from, to, err := s.yearRange(year)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopBrands
	}

	totals, err := s.store.BrandTotals(ctx, from, to)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "brand totals")
	}
	_, yearRevenue, err := s.store.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "sales totals")
	}

	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].TotalAmount.Cmp(totals[j].TotalAmount); c != 0 {
			return c > 0
		}
		if totals[i].SalesCount != totals[j].SalesCount {
			return totals[i].SalesCount > totals[j].SalesCount
		}
		return totals[i].Brand < totals[j].Brand
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}

	out := make([]models.BrandRanking, 0, len(totals))
	for i, t := range totals {
		r := models.BrandRanking{
			Rank:          i + 1,
			Brand:         t.Brand,
			TotalAmount:   t.TotalAmount,
			SalesCount:    t.SalesCount,
			VehiclesCount: t.VehiclesCount,
			AverageSale:   pricing.Zero(),
			SharePercent:  decimal.Zero,
		}
		if t.SalesCount > 0 {
			r.AverageSale = t.TotalAmount.DivInt(t.SalesCount).RoundCents()
		}
		if yearRevenue.IsPositive() {
			r.SharePercent = t.TotalAmount.Decimal().
				Mul(decimal.NewFromInt(percent)).
				Div(yearRevenue.Decimal()).
				Round(shareDecimalPlaces)
		}
		out = append(out, r)
	}
	return out, nil
}

// MonthSummary covers ACTIVE sales in the calendar month containing at.
func (s *Service) MonthSummary(ctx context.Context, at time.Time) (*models.SalesSummary, error) {
	if at.IsZero() {
		at = s.now()
	}
	from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	count, revenue, err := s.store.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "sales summary")
	}
	summary := &models.SalesSummary{From: from, To: to, Revenue: revenue, ActiveSales: count, AverageSale: pricing.Zero()}
	if count > 0 {
		summary.AverageSale = revenue.DivInt(count).RoundCents()
	}
	return summary, nil
}

// AgingStock counts AVAILABLE vehicles older than days (default 90).
func (s *Service) AgingStock(ctx context.Context, days int) (*models.AgingStock, error) {
	if days <= 0 {
		days = DefaultAgingDays
	}
	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.store.CountAvailableBefore(ctx, cutoff)
	if err != nil {
		return nil, postgres.Classify(ctx, err, "aging stock")
	}
	return &models.AgingStock{ThresholdDays: days, Cutoff: cutoff, Count: n}, nil
}
