package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"dealer/pkg/requestcontext"
)

// Action names the kind of state change an audit record captures.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionCancel Action = "CANCEL"
)

// EntityType names the aggregate an audit record refers to.
type EntityType string

const (
	EntitySale    EntityType = "sale"
	EntityVehicle EntityType = "vehicle"
)

// Record is an immutable trail entry for a committed state change.
// Before and After are JSON snapshots; Before is null for CREATE.
type Record struct {
	ID         string          `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     Action          `json:"action"`
	Actor      string          `json:"actor"`
	RequestID  string          `json:"request_id,omitempty"`
	Device     string          `json:"device,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Before     json.RawMessage `json:"before"`
	After      json.RawMessage `json:"after"`
}

// ErrorEvent is an immutable diagnostic entry for an aborted operation.
// Code holds the domain error code; SQLState is set when the cause came from Postgres.
type ErrorEvent struct {
	ID        string          `json:"id"`
	Origin    string          `json:"origin"`
	Detail    string          `json:"detail"`
	Code      string          `json:"code"`
	SQLState  string          `json:"sqlstate,omitempty"`
	Actor     string          `json:"actor"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Context   json.RawMessage `json:"context"`
}

// NewID returns a lexically time-ordered identifier for records and events.
func NewID() string {
	return ulid.Make().String()
}

// NewRecord builds a Record attributed to the actor in ctx. Snapshots are
// marshalled immediately so later mutation of the source values cannot leak in.
func NewRecord(ctx context.Context, entity EntityType, entityID string, action Action, before, after any) (Record, error) {
	beforeJSON, err := snapshot(before)
	if err != nil {
		return Record{}, fmt.Errorf("marshal before snapshot: %w", err)
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		return Record{}, fmt.Errorf("marshal after snapshot: %w", err)
	}
	return Record{
		ID:         NewID(),
		EntityType: entity,
		EntityID:   entityID,
		Action:     action,
		Actor:      requestcontext.Actor(ctx),
		RequestID:  requestcontext.RequestID(ctx),
		Device:     requestcontext.Device(ctx),
		Timestamp:  requestcontext.Now(ctx).UTC(),
		Before:     beforeJSON,
		After:      afterJSON,
	}, nil
}

// NewErrorEvent builds an ErrorEvent attributed to the actor in ctx.
// A context value that cannot be marshalled is replaced by its %v rendering.
func NewErrorEvent(ctx context.Context, origin, code, sqlState, detail string, fields map[string]any) ErrorEvent {
	raw, err := snapshot(fields)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{"unmarshallable": fmt.Sprintf("%v", fields)})
	}
	return ErrorEvent{
		ID:        NewID(),
		Origin:    origin,
		Detail:    detail,
		Code:      code,
		SQLState:  sqlState,
		Actor:     requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: time.Now().UTC(),
		Context:   raw,
	}
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// RecordFilter narrows record listings. Zero values mean "any".
type RecordFilter struct {
	EntityType EntityType
	EntityID   string
	Action     Action
	Limit      int
}

// ErrorFilter narrows error-event listings. Zero values mean "any".
type ErrorFilter struct {
	Origin string
	Code   string
	Limit  int
}

// DefaultListLimit caps listings when the caller does not set a limit.
const DefaultListLimit = 100

func effectiveLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultListLimit
	}
	return limit
}

func (f RecordFilter) EffectiveLimit() int { return effectiveLimit(f.Limit) }

func (f ErrorFilter) EffectiveLimit() int { return effectiveLimit(f.Limit) }

// Store appends records and events. Append participates in the ambient
// transaction when one is bound to ctx; AppendError is expected to be called
// after a rollback, outside any transaction.
type Store interface {
	Append(ctx context.Context, record Record) error
	AppendError(ctx context.Context, event ErrorEvent) error
}

// Reader exposes the audit history to list/detail/report views, newest first.
type Reader interface {
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
	ListErrors(ctx context.Context, filter ErrorFilter) ([]ErrorEvent, error)
}
