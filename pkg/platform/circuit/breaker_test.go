package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerDefaults(t *testing.T) {
	b := New("classification-cache")
	assert.Equal(t, "classification-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	for i := 0; i < 4; i++ {
		useFallback, change := b.RecordFailure()
		require.False(t, useFallback, "failure %d", i+1)
		require.False(t, change.Opened)
	}
	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())
}

func TestBreakerTransitions(t *testing.T) {
	type step struct {
		fail     bool
		wantUse  bool
		wantOpen bool
		opened   bool
		closed   bool
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "success resets failure streak while closed",
			steps: []step{
				{fail: true, wantUse: false},
				{fail: false, wantUse: true},
				{fail: true, wantUse: false},
				{fail: true, wantUse: true, wantOpen: true, opened: true},
			},
		},
		{
			name: "open circuit needs consecutive successes to close",
			steps: []step{
				{fail: true},
				{fail: true, wantUse: true, wantOpen: true, opened: true},
				{fail: false, wantUse: false, wantOpen: true},
				{fail: true, wantUse: true, wantOpen: true},
				{fail: false, wantUse: false, wantOpen: true},
				{fail: false, wantUse: true, closed: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("audit-outbox", WithFailureThreshold(2), WithSuccessThreshold(2))
			for i, st := range tt.steps {
				var use bool
				var change Change
				if st.fail {
					use, change = b.RecordFailure()
				} else {
					use, change = b.RecordSuccess()
				}
				assert.Equal(t, st.wantUse, use, "step %d result", i)
				assert.Equal(t, st.wantOpen, b.IsOpen(), "step %d state", i)
				assert.Equal(t, st.opened, change.Opened, "step %d opened", i)
				assert.Equal(t, st.closed, change.Closed, "step %d closed", i)
			}
		})
	}
}

func TestBreakerIgnoresNonPositiveThresholds(t *testing.T) {
	b := New("x", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 3, b.successThreshold)
}

func TestBreakerReset(t *testing.T) {
	b := New("x", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback)
}

func TestBreakerConcurrentFailures(t *testing.T) {
	b := New("x", WithFailureThreshold(50))
	var wg sync.WaitGroup
	opened := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				opened <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(opened)

	assert.True(t, b.IsOpen())
	assert.Len(t, opened, 1)
}
