package memory

import (
	"context"
	"sync"

	audit "dealer/pkg/platform/audit"
	"dealer/pkg/platform/tx"
)

// InMemoryStore keeps audit records and error events in process. Records
// roll back with the surrounding MemoryRunner transaction and are read
// through the gate, so no reader sees a record that may still be rolled
// back. Error events are written outside transactions and never roll back.
type InMemoryStore struct {
	gate    *tx.Gate
	mu      sync.RWMutex
	records []audit.Record
	errors  []audit.ErrorEvent
}

// NewInMemoryStore builds a store joined to gate. A nil gate is allowed for
// stores that never take part in a transaction.
func NewInMemoryStore(gate *tx.Gate) *InMemoryStore {
	return &InMemoryStore{gate: gate}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.errors = nil
}

// Snapshot implements tx.Snapshotter. Records are append-only, so restoring
// truncates back to the captured length.
func (s *InMemoryStore) Snapshot() func() {
	s.mu.RLock()
	n := len(s.records)
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.records) > n {
			s.records = s.records[:n]
		}
	}
}

func (s *InMemoryStore) Append(ctx context.Context, record audit.Record) error {
	defer s.gate.Write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) AppendError(_ context.Context, event audit.ErrorEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, event)
	return nil
}

// ListRecords returns matching records, newest first.
func (s *InMemoryStore) ListRecords(ctx context.Context, filter audit.RecordFilter) ([]audit.Record, error) {
	defer s.gate.Read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.EffectiveLimit()
	out := make([]audit.Record, 0, min(limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := s.records[i]
		if filter.EntityType != "" && r.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && r.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && r.Action != filter.Action {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ListErrors returns matching error events, newest first.
func (s *InMemoryStore) ListErrors(_ context.Context, filter audit.ErrorFilter) ([]audit.ErrorEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.EffectiveLimit()
	out := make([]audit.ErrorEvent, 0, min(limit, len(s.errors)))
	for i := len(s.errors) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.errors[i]
		if filter.Origin != "" && e.Origin != filter.Origin {
			continue
		}
		if filter.Code != "" && e.Code != filter.Code {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
