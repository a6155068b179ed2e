//go:generate mockgen -source=outbox.go -destination=mocks/mocks.go -package=mocks

// Package outbox relays committed audit rows from the PostgreSQL outbox
// table to Kafka. Rows are claimed with FOR UPDATE SKIP LOCKED so several
// relays can run side by side without publishing the same row twice.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one unpublished outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Store claims and settles outbox rows. Both calls must run inside the same
// transaction so claimed rows stay locked until they are marked.
type Store interface {
	ClaimPending(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher delivers an entry to the message broker.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
}

// TxRunner scopes a claim/publish/mark cycle to one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
