package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	audit "dealer/pkg/platform/audit"
	txcontext "dealer/pkg/platform/tx"
)

// Store implements audit.Store and audit.Reader on PostgreSQL using the
// transactional outbox pattern: each record or event is written to its query
// table and, in the same transaction, to the outbox for Kafka publishing.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	eventTypeRecord = "audit.record"
	eventTypeError  = "audit.error"
)

// Append writes a record inside the ambient transaction, so it commits or
// rolls back together with the state change it describes.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	exec := txcontext.Exec(ctx, s.db)

	query := `
		INSERT INTO audit_records (
			id, entity_type, entity_id, action, actor,
			request_id, device, occurred_at, before_state, after_state
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := exec.ExecContext(ctx, query,
		record.ID,
		string(record.EntityType),
		record.EntityID,
		string(record.Action),
		record.Actor,
		record.RequestID,
		record.Device,
		record.Timestamp,
		jsonOrNull(record.Before),
		jsonOrNull(record.After),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return s.enqueue(ctx, exec, string(record.EntityType), record.EntityID, eventTypeRecord, record)
}

// AppendError writes an error event and its outbox entry in one short
// transaction of their own. Callers invoke it after rollback so the event
// survives the failed operation; inside an ambient transaction it joins that
// one instead.
func (s *Store) AppendError(ctx context.Context, event audit.ErrorEvent) error {
	if _, ok := txcontext.From(ctx); ok {
		return s.appendError(ctx, event)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin error event transaction: %w", err)
	}
	if err := s.appendError(txcontext.WithTx(ctx, sqlTx), event); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit error event: %w", err)
	}
	return nil
}

func (s *Store) appendError(ctx context.Context, event audit.ErrorEvent) error {
	exec := txcontext.Exec(ctx, s.db)

	query := `
		INSERT INTO error_events (
			id, origin, detail, code, sqlstate,
			actor, request_id, occurred_at, context
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := exec.ExecContext(ctx, query,
		event.ID,
		event.Origin,
		event.Detail,
		event.Code,
		event.SQLState,
		event.Actor,
		event.RequestID,
		event.Timestamp,
		jsonOrNull(event.Context),
	)
	if err != nil {
		return fmt.Errorf("insert error event: %w", err)
	}
	return s.enqueue(ctx, exec, "error", event.Origin, eventTypeError, event)
}

func (s *Store) enqueue(ctx context.Context, exec txcontext.Executor, aggregateType, aggregateID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = exec.ExecContext(ctx, query,
		uuid.New(),
		aggregateType,
		aggregateID,
		eventType,
		body,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListRecords returns matching records, newest first.
func (s *Store) ListRecords(ctx context.Context, filter audit.RecordFilter) ([]audit.Record, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		args = append(args, string(filter.EntityType))
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	args = append(args, filter.EffectiveLimit())

	query := `
		SELECT id, entity_type, entity_id, action, actor,
			   request_id, device, occurred_at, before_state, after_state
		FROM audit_records` + whereClause(where) + fmt.Sprintf(`
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			r                  audit.Record
			entityType, action string
			before, after      []byte
		)
		if err := rows.Scan(&r.ID, &entityType, &r.EntityID, &action, &r.Actor,
			&r.RequestID, &r.Device, &r.Timestamp, &before, &after); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.EntityType = audit.EntityType(entityType)
		r.Action = audit.Action(action)
		r.Before = rawOrNull(before)
		r.After = rawOrNull(after)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

// ListErrors returns matching error events, newest first.
func (s *Store) ListErrors(ctx context.Context, filter audit.ErrorFilter) ([]audit.ErrorEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		where = append(where, fmt.Sprintf("origin = $%d", len(args)))
	}
	if filter.Code != "" {
		args = append(args, filter.Code)
		where = append(where, fmt.Sprintf("code = $%d", len(args)))
	}
	args = append(args, filter.EffectiveLimit())

	query := `
		SELECT id, origin, detail, code, sqlstate,
			   actor, request_id, occurred_at, context
		FROM error_events` + whereClause(where) + fmt.Sprintf(`
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error events: %w", err)
	}
	defer rows.Close()

	var events []audit.ErrorEvent
	for rows.Next() {
		var (
			e   audit.ErrorEvent
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.Origin, &e.Detail, &e.Code, &e.SQLState,
			&e.Actor, &e.RequestID, &e.Timestamp, &raw); err != nil {
			return nil, fmt.Errorf("scan error event: %w", err)
		}
		e.Context = rawOrNull(raw)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error events: %w", err)
	}
	return events, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND ")
}

func jsonOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}
