package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dealer/internal/pricing"
	"dealer/internal/sale/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
	txcontext "dealer/pkg/platform/tx"
)

// PostgresStore persists sales and line items. Writes are expected to run
// inside the coordinator's transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const saleColumns = `id, client_id, employee_id, payment_method_id, sale_date, total, discount, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*models.Sale, error) {
	var (
		s                          models.Sale
		rawID, client, emp, method uuid.UUID
		status                     string
	)
	if err := row.Scan(&rawID, &client, &emp, &method, &s.SaleDate, &s.Total, &s.Discount,
		&status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ID = id.SaleID(rawID)
	s.ClientID = id.ClientID(client)
	s.EmployeeID = id.EmployeeID(emp)
	s.PaymentMethodID = id.PaymentMethodID(method)
	s.Status = models.Status(status)
	return &s, nil
}

func (s *PostgresStore) Create(ctx context.Context, sale *models.Sale, items []models.LineItem) error {
	exec := txcontext.Exec(ctx, s.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(sale.ID), uuid.UUID(sale.ClientID), uuid.UUID(sale.EmployeeID), uuid.UUID(sale.PaymentMethodID),
		sale.SaleDate, sale.Total, sale.Discount, string(sale.Status), sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, it := range items {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO sale_line_items (id, sale_id, vehicle_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(it.ID), uuid.UUID(it.SaleID), uuid.UUID(it.VehicleID), it.Quantity, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale line item: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	return s.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, saleID)
}

// FindByIDForUpdate locks the sale row until the surrounding transaction ends.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	return s.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, saleID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, saleID id.SaleID) (*models.Sale, error) {
	sale, err := scanSale(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(saleID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return sale, nil
}

const lineItemColumns = `id, sale_id, vehicle_id, quantity, unit_price, subtotal`

func scanLineItem(row rowScanner) (models.LineItem, error) {
	var (
		it                   models.LineItem
		rawID, sale, vehicle uuid.UUID
	)
	if err := row.Scan(&rawID, &sale, &vehicle, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
		return it, err
	}
	it.ID = id.LineItemID(rawID)
	it.SaleID = id.SaleID(sale)
	it.VehicleID = id.VehicleID(vehicle)
	return it, nil
}

func (s *PostgresStore) LineItems(ctx context.Context, saleID id.SaleID) ([]models.LineItem, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+lineItemColumns+` FROM sale_line_items WHERE sale_id = $1 ORDER BY id`, uuid.UUID(saleID))
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()
	var out []models.LineItem
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LineItemsFor(ctx context.Context, saleIDs []id.SaleID) (map[id.SaleID][]models.LineItem, error) {
	out := make(map[id.SaleID][]models.LineItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}
	raw := make([]string, len(saleIDs))
	for i, sid := range saleIDs {
		raw[i] = sid.String()
	}
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+lineItemColumns+` FROM sale_line_items WHERE sale_id::text = ANY($1::text[]) ORDER BY sale_id, id`,
		pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out[it.SaleID] = append(out[it.SaleID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, saleID id.SaleID, from, to models.Status, now time.Time) (*models.Sale, error) {
	query := `
		UPDATE sales SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + saleColumns
	sale, err := scanSale(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(saleID), string(from), string(to), now))
	if err == nil {
		return sale, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update sale status: %w", err)
	}
	current, err := s.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return current, sentinel.ErrInvalidState
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Sale, error) {
	var (
		conds []string
		args  []any
	)
	if !filter.ClientID.IsNil() {
		args = append(args, uuid.UUID(filter.ClientID))
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, fmt.Sprintf("sale_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, fmt.Sprintf("sale_date < $%d", len(args)))
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var out []*models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ClientStats(ctx context.Context, clientID id.ClientID) (int, pricing.Money, error) {
	var (
		count int
		spend pricing.Money
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales WHERE client_id = $1 AND status = 'ACTIVE'`, uuid.UUID(clientID)).Scan(&count, &spend)
	if err != nil {
		return 0, pricing.Zero(), fmt.Errorf("client stats: %w", err)
	}
	return count, spend, nil
}

func (s *PostgresStore) ActiveSaleCount(ctx context.Context, vehicleID id.VehicleID) (int, error) {
	var n int
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sale_line_items li
		JOIN sales s ON s.id = li.sale_id
		WHERE li.vehicle_id = $1 AND s.status = 'ACTIVE'`, uuid.UUID(vehicleID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("active sale count: %w", err)
	}
	return n, nil
}
