package tx

import (
	"context"
	"sync"
	"time"

	dErrors "dealer/pkg/domain-errors"
)

// Snapshotter is implemented by in-memory stores that take part in a
// MemoryRunner transaction. Snapshot captures current state and returns a
// function that restores it.
type Snapshotter interface {
	Snapshot() (restore func())
}

// Gate serializes in-memory transactions against other readers and writers.
// Stores call Read/Write around operations made outside a transaction; inside
// a MemoryRunner transaction the runner already holds the gate exclusively.
type Gate struct {
	mu sync.RWMutex
}

func NewGate() *Gate {
	return &Gate{}
}

type memTxKey struct{}

// InMemoryTx reports whether ctx belongs to a running MemoryRunner transaction.
func InMemoryTx(ctx context.Context) bool {
	v, _ := ctx.Value(memTxKey{}).(bool)
	return v
}

// Read acquires the gate for a read outside a transaction.
func (g *Gate) Read(ctx context.Context) func() {
	if g == nil || InMemoryTx(ctx) {
		return func() {}
	}
	g.mu.RLock()
	return g.mu.RUnlock
}

// Write acquires the gate for a write outside a transaction.
func (g *Gate) Write(ctx context.Context) func() {
	if g == nil || InMemoryTx(ctx) {
		return func() {}
	}
	g.mu.Lock()
	return g.mu.Unlock
}

const defaultMemoryTxTimeout = 5 * time.Second

// MemoryRunner provides all-or-nothing semantics for in-memory stores:
// transactions run one at a time under the gate, and every participant is
// restored to its snapshot when fn fails.
type MemoryRunner struct {
	gate         *Gate
	participants []Snapshotter
	timeout      time.Duration
}

func NewMemoryRunner(gate *Gate, participants ...Snapshotter) *MemoryRunner {
	if gate == nil {
		gate = NewGate()
	}
	return &MemoryRunner{gate: gate, participants: participants, timeout: defaultMemoryTxTimeout}
}

// WithTimeout overrides the default transaction timeout.
func (r *MemoryRunner) WithTimeout(d time.Duration) *MemoryRunner {
	r.timeout = d
	return r
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.gate.mu.Lock()
	defer r.gate.mu.Unlock()

	// Check again after acquiring the gate
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	restores := make([]func(), 0, len(r.participants))
	for _, p := range r.participants {
		restores = append(restores, p.Snapshot())
	}
	rollback := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}

	txCtx := context.WithValue(ctx, memTxKey{}, true)
	if err := fn(txCtx); err != nil {
		rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		rollback()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: deadline exceeded before commit")
	}
	return nil
}
