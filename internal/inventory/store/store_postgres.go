package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dealer/internal/inventory/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
	txcontext "dealer/pkg/platform/tx"
)

// PostgresStore persists vehicles in PostgreSQL. All calls join the ambient
// transaction when one is bound to ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const vehicleColumns = `id, brand, model, year, vehicle_type, color, COALESCE(vin, ''), price, state, version, intake_date, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var (
		v     models.Vehicle
		rawID uuid.UUID
		state string
	)
	if err := row.Scan(&rawID, &v.Brand, &v.Model, &v.Year, &v.VehicleType, &v.Color, &v.VIN,
		&v.UnitPrice, &state, &v.Version, &v.IntakeDate, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.ID = id.VehicleID(rawID)
	v.State = models.AvailabilityState(state)
	return &v, nil
}

func nullableVIN(vin string) any {
	if vin == "" {
		return nil
	}
	return vin
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, brand, model, year, vehicle_type, color, vin, price, state, version, intake_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT DO NOTHING
	`
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(v.ID), v.Brand, v.Model, v.Year, v.VehicleType, v.Color, nullableVIN(v.VIN),
		v.UnitPrice, string(v.State), v.Version, v.IntakeDate, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(vehicleID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.VehicleID) ([]*models.Vehicle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, vid := range ids {
		raw[i] = vid.String()
	}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id::text = ANY($1::text[])`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Vehicle, error) {
	var (
		conds []string
		args  []any
	)
	if filter.State != "" {
		args = append(args, string(filter.State))
		conds = append(conds, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		conds = append(conds, fmt.Sprintf("LOWER(brand) = LOWER($%d)", len(args)))
	}
	if filter.VehicleType != "" {
		args = append(args, filter.VehicleType)
		conds = append(conds, fmt.Sprintf("LOWER(vehicle_type) = LOWER($%d)", len(args)))
	}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY brand, model, year DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows *sql.Rows) ([]*models.Vehicle, error) {
	var out []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return out, nil
}

// CompareAndSetState issues a conditional UPDATE. The row lock it takes is
// held until the surrounding transaction ends, so a concurrent writer blocks,
// re-evaluates the predicate after commit and matches zero rows. A zero-row
// result is classified by re-reading the vehicle.
func (s *PostgresStore) CompareAndSetState(ctx context.Context, vehicleID id.VehicleID, from, to models.AvailabilityState, expectedVersion int64, now time.Time) (*models.Vehicle, error) {
	query := `
		UPDATE vehicles
		SET state = $3, version = version + 1, updated_at = $5
		WHERE id = $1 AND state = $2 AND ($4 = 0 OR version = $4)
		RETURNING ` + vehicleColumns
	exec := txcontext.Exec(ctx, s.db)
	v, err := scanVehicle(exec.QueryRowContext(ctx, query,
		uuid.UUID(vehicleID), string(from), string(to), expectedVersion, now))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update vehicle state: %w", err)
	}

	current, err := s.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if current.State != from {
		return current, sentinel.ErrInvalidState
	}
	return current, sentinel.ErrStale
}
