package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	dErrors "dealer/pkg/domain-errors"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
		want dErrors.Code
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, dErrors.CodeConcurrentModification},
		{"deadlock", fmt.Errorf("update: %w", &pgconn.PgError{Code: "40P01"}), dErrors.CodeConcurrentModification},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, dErrors.CodeTimeout},
		{"deadline", context.DeadlineExceeded, dErrors.CodeTimeout},
		{"unique violation", &pgconn.PgError{Code: "23505"}, dErrors.CodeStorageFailure},
		{"plain error", errors.New("connection reset"), dErrors.CodeStorageFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(ctx, tc.err, "op")
			assert.True(t, dErrors.HasCode(got, tc.want), "got %v", got)
		})
	}
}

func TestClassifyKeepsDomainErrors(t *testing.T) {
	original := dErrors.New(dErrors.CodeVehicleNotAvailable, "vehicle sold")
	assert.Same(t, original, Classify(context.Background(), original, "op"))
}

func TestClassifyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := Classify(ctx, errors.New("driver: bad connection"), "op")
	assert.True(t, dErrors.HasCode(got, dErrors.CodeTimeout))
}

func TestSQLState(t *testing.T) {
	assert.Equal(t, "40001", SQLState(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"})))
	assert.Empty(t, SQLState(errors.New("plain")))
}
