package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeVehicleNotAvailable, "vehicle sold")
		assert.True(t, HasCode(err, CodeVehicleNotAvailable))
		assert.False(t, HasCode(err, CodeTimeout))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeInvalidAmount, "bad price"))
		assert.True(t, HasCode(err, CodeInvalidAmount))
	})

	t.Run("matches inner domain code", func(t *testing.T) {
		inner := New(CodeConcurrentModification, "stale")
		outer := Wrap(inner, CodeStorageFailure, "tx failed")
		assert.True(t, HasCode(outer, CodeStorageFailure))
		assert.True(t, HasCode(outer, CodeConcurrentModification))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestMessageOfHidesCause(t *testing.T) {
	err := Wrap(errors.New("pq: connection refused"), CodeStorageFailure, "storage unavailable")
	assert.Equal(t, "storage unavailable", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "internal error", MessageOf(errors.New("raw")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
}
