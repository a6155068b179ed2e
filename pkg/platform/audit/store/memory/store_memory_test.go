package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "dealer/pkg/platform/audit"
	"dealer/pkg/platform/tx"
)

func TestRecordsRollBackWithTransaction(t *testing.T) {
	gate := tx.NewGate()
	store := NewInMemoryStore(gate)
	runner := tx.NewMemoryRunner(gate, store)
	ctx := context.Background()

	require.NoError(t, runner.RunInTx(ctx, func(ctx context.Context) error {
		return store.Append(ctx, audit.Record{ID: "a", EntityType: audit.EntitySale, Action: audit.ActionCreate})
	}))

	boom := errors.New("boom")
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Append(ctx, audit.Record{ID: "b", EntityType: audit.EntitySale, Action: audit.ActionCreate}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.AppendError(ctx, audit.ErrorEvent{ID: "e1", Origin: "register_sale"}))

	records, err := store.ListRecords(ctx, audit.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)

	events, err := store.ListErrors(ctx, audit.ErrorFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestReaderWaitsForOpenTransaction(t *testing.T) {
	gate := tx.NewGate()
	store := NewInMemoryStore(gate)
	runner := tx.NewMemoryRunner(gate, store)
	ctx := context.Background()

	appended := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- runner.RunInTx(ctx, func(ctx context.Context) error {
			if err := store.Append(ctx, audit.Record{ID: "pending", EntityType: audit.EntitySale, Action: audit.ActionCreate}); err != nil {
				return err
			}
			close(appended)
			<-release
			return errors.New("rolled back")
		})
	}()
	<-appended

	type listResult struct {
		records []audit.Record
		err     error
	}
	read := make(chan listResult, 1)
	go func() {
		records, err := store.ListRecords(ctx, audit.RecordFilter{})
		read <- listResult{records, err}
	}()

	select {
	case <-read:
		t.Fatal("reader saw the store while a transaction was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)

	res := <-read
	require.NoError(t, res.err)
	assert.Empty(t, res.records)
}

func TestListRecordsFiltersNewestFirst(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, audit.Record{ID: "1", EntityType: audit.EntityVehicle, EntityID: "v1", Action: audit.ActionUpdate}))
	require.NoError(t, store.Append(ctx, audit.Record{ID: "2", EntityType: audit.EntitySale, EntityID: "s1", Action: audit.ActionCreate}))
	require.NoError(t, store.Append(ctx, audit.Record{ID: "3", EntityType: audit.EntityVehicle, EntityID: "v1", Action: audit.ActionUpdate}))

	records, err := store.ListRecords(ctx, audit.RecordFilter{EntityType: audit.EntityVehicle, EntityID: "v1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[0].ID)
	assert.Equal(t, "1", records[1].ID)

	limited, err := store.ListRecords(ctx, audit.RecordFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "3", limited[0].ID)
}
