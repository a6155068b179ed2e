package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dealer/internal/pricing"
	"dealer/internal/reports/models"
	id "dealer/pkg/domain"
	txcontext "dealer/pkg/platform/tx"
)

// PostgresStore runs report aggregates as single SQL statements.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ClientHistory(ctx context.Context, clientID id.ClientID) ([]models.HistoryEntry, error) {
	query := `
		SELECT s.id, s.sale_date, s.total, s.discount, s.status,
		       COUNT(li.id),
		       COALESCE(ARRAY_AGG(TRIM(v.brand || ' ' || v.model) ORDER BY v.brand, v.model)
		                FILTER (WHERE v.id IS NOT NULL), '{}')
		FROM sales s
		LEFT JOIN sale_line_items li ON li.sale_id = s.id
		LEFT JOIN vehicles v ON v.id = li.vehicle_id
		WHERE s.client_id = $1
		GROUP BY s.id
		ORDER BY s.sale_date DESC, s.created_at DESC`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("client history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			e      models.HistoryEntry
			saleID uuid.UUID
			names  []string
		)
		if err := rows.Scan(&saleID, &e.SaleDate, &e.Total, &e.Discount, &e.Status, &e.VehicleCount, pq.Array(&names)); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.SaleID = id.SaleID(saleID)
		e.Vehicles = names
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Availability(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityRow, error) {
	args := []any{}
	query := `SELECT brand, vehicle_type, COUNT(*), COALESCE(SUM(price), 0) FROM vehicles WHERE state = 'AVAILABLE'`
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		query += fmt.Sprintf(" AND LOWER(brand) = LOWER($%d)", len(args))
	}
	if filter.VehicleType != "" {
		args = append(args, filter.VehicleType)
		query += fmt.Sprintf(" AND LOWER(vehicle_type) = LOWER($%d)", len(args))
	}
	if !filter.IntakeFrom.IsZero() {
		args = append(args, filter.IntakeFrom)
		query += fmt.Sprintf(" AND intake_date >= $%d", len(args))
	}
	if !filter.IntakeTo.IsZero() {
		args = append(args, filter.IntakeTo)
		query += fmt.Sprintf(" AND intake_date < $%d", len(args))
	}
	query += " GROUP BY brand, vehicle_type ORDER BY brand, vehicle_type"

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	defer rows.Close()

	var out []models.AvailabilityRow
	for rows.Next() {
		var r models.AvailabilityRow
		if err := rows.Scan(&r.Brand, &r.VehicleType, &r.Count, &r.TotalValue); err != nil {
			return nil, fmt.Errorf("scan availability row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", err)
	}
	return out, nil
}

// BrandTotals credits each ACTIVE sale's total once to every brand it contains.
func (s *PostgresStore) BrandTotals(ctx context.Context, from, to time.Time) ([]models.BrandTotal, error) {
	query := `
		WITH per_sale AS (
			SELECT s.id, s.total, TRIM(v.brand) AS brand, SUM(li.quantity) AS vehicles
			FROM sales s
			JOIN sale_line_items li ON li.sale_id = s.id
			JOIN vehicles v ON v.id = li.vehicle_id
			WHERE s.status = 'ACTIVE' AND s.sale_date >= $1 AND s.sale_date < $2
			GROUP BY s.id, s.total, TRIM(v.brand)
		)
		SELECT brand, SUM(total), COUNT(*), SUM(vehicles)
		FROM per_sale
		GROUP BY brand`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("brand totals: %w", err)
	}
	defer rows.Close()

	var out []models.BrandTotal
	for rows.Next() {
		var t models.BrandTotal
		if err := rows.Scan(&t.Brand, &t.TotalAmount, &t.SalesCount, &t.VehiclesCount); err != nil {
			return nil, fmt.Errorf("scan brand total: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand totals: %w", err)
	}
	return out, nil
}

// MonthlyBrandTotals splits BrandTotals by the month of the sale date.
func (s *PostgresStore) MonthlyBrandTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyBrandSales, error) {
	query := `
		WITH per_sale AS (
			SELECT s.id, s.total, EXTRACT(MONTH FROM s.sale_date)::int AS month,
			       TRIM(v.brand) AS brand, SUM(li.quantity) AS vehicles
			FROM sales s
			JOIN sale_line_items li ON li.sale_id = s.id
			JOIN vehicles v ON v.id = li.vehicle_id
			WHERE s.status = 'ACTIVE' AND s.sale_date >= $1 AND s.sale_date < $2
			GROUP BY s.id, s.total, s.sale_date, TRIM(v.brand)
		)
		SELECT month, brand, COUNT(*), SUM(vehicles), SUM(total)
		FROM per_sale
		GROUP BY month, brand
		ORDER BY month, brand`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly brand totals: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyBrandSales
	for rows.Next() {
		var m models.MonthlyBrandSales
		if err := rows.Scan(&m.Month, &m.Brand, &m.SalesCount, &m.VehiclesCount, &m.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan monthly brand row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly brand totals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SalesTotals(ctx context.Context, from, to time.Time) (int, pricing.Money, error) {
	var (
		count   int
		revenue pricing.Money
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0) FROM sales
		WHERE status = 'ACTIVE' AND sale_date >= $1 AND sale_date < $2`, from, to).Scan(&count, &revenue)
	if err != nil {
		return 0, pricing.Zero(), fmt.Errorf("sales totals: %w", err)
	}
	return count, revenue, nil
}

func (s *PostgresStore) CountAvailableBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vehicles WHERE state = 'AVAILABLE' AND intake_date < $1`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("aging stock: %w", err)
	}
	return n, nil
}
