package tx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dealer/pkg/domain-errors"
)

type counterStore struct {
	mu    sync.Mutex
	value int
}

func (c *counterStore) Snapshot() func() {
	c.mu.Lock()
	saved := c.value
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.value = saved
		c.mu.Unlock()
	}
}

func (c *counterStore) add(n int) {
	c.mu.Lock()
	c.value += n
	c.mu.Unlock()
}

func TestMemoryRunnerCommitsOnSuccess(t *testing.T) {
	store := &counterStore{}
	runner := NewMemoryRunner(NewGate(), store)

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InMemoryTx(ctx))
		store.add(3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.value)
}

func TestMemoryRunnerRestoresOnError(t *testing.T) {
	store := &counterStore{value: 10}
	runner := NewMemoryRunner(NewGate(), store)

	boom := errors.New("boom")
	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		store.add(5)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 10, store.value)
}

func TestMemoryRunnerRejectsCancelledContext(t *testing.T) {
	runner := NewMemoryRunner(NewGate())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := runner.RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestMemoryRunnerRollsBackWhenDeadlinePassesInsideTx(t *testing.T) {
	store := &counterStore{}
	runner := NewMemoryRunner(NewGate(), store)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runner.RunInTx(ctx, func(context.Context) error {
		store.add(1)
		time.Sleep(40 * time.Millisecond)
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.Equal(t, 0, store.value)
}

func TestGateBlocksReadersDuringTx(t *testing.T) {
	gate := NewGate()
	runner := NewMemoryRunner(gate)
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = runner.RunInTx(context.Background(), func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	readDone := make(chan struct{})
	go func() {
		unlock := gate.Read(context.Background())
		unlock()
		close(readDone)
	}()

	select {
	case <-readDone:
		t.Fatal("reader should wait for the running transaction")
	case <-time.After(30 * time.Millisecond):
	}
	close(release)
	<-readDone
}
