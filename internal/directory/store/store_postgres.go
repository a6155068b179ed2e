package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dealer/internal/directory/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
	txcontext "dealer/pkg/platform/tx"
)

// PostgresStore reads reference data from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func insertOnce(ctx context.Context, exec txcontext.Executor, query string, args ...any) error {
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, c *models.Client) error {
	err := insertOnce(ctx, txcontext.Exec(ctx, s.db), `
		INSERT INTO clients (id, full_name, email, phone, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		uuid.UUID(c.ID), c.FullName, c.Email, c.Phone, c.RegisteredAt)
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return fmt.Errorf("insert client: %w", err)
	}
	return err
}

func (s *PostgresStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	err := insertOnce(ctx, txcontext.Exec(ctx, s.db), `
		INSERT INTO employees (id, full_name, position, username, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		uuid.UUID(e.ID), e.FullName, e.Position, e.Username, string(e.Status))
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return fmt.Errorf("insert employee: %w", err)
	}
	return err
}

func (s *PostgresStore) CreatePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	err := insertOnce(ctx, txcontext.Exec(ctx, s.db), `
		INSERT INTO payment_methods (id, name, active)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		uuid.UUID(m.ID), m.Name, m.Active)
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return err
}

func (s *PostgresStore) FindClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	var c models.Client
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT full_name, email, phone, registered_at FROM clients WHERE id = $1`,
		uuid.UUID(clientID)).Scan(&c.FullName, &c.Email, &c.Phone, &c.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	c.ID = clientID
	return &c, nil
}

func (s *PostgresStore) FindEmployee(ctx context.Context, employeeID id.EmployeeID) (*models.Employee, error) {
	var (
		e      models.Employee
		status string
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT full_name, position, username, status FROM employees WHERE id = $1`,
		uuid.UUID(employeeID)).Scan(&e.FullName, &e.Position, &e.Username, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	e.ID = employeeID
	e.Status = models.EmployeeStatus(status)
	return &e, nil
}

func (s *PostgresStore) FindPaymentMethod(ctx context.Context, methodID id.PaymentMethodID) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT name, active FROM payment_methods WHERE id = $1`,
		uuid.UUID(methodID)).Scan(&m.Name, &m.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment method: %w", err)
	}
	m.ID = methodID
	return &m, nil
}
