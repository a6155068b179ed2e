package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	dErrors "dealer/pkg/domain-errors"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateQueryCanceled        = "57014"
	sqlStateLockNotAvailable     = "55P03"
)

// SQLState returns the SQLSTATE carried by err, or "" when err did not come
// from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Classify maps a driver error to a domain error. Errors that already carry
// a domain code are returned unchanged.
func Classify(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": operation timed out")
	}
	switch SQLState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification, op+": concurrent modification")
	case sqlStateQueryCanceled:
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": statement cancelled")
	}
	return dErrors.Wrap(err, dErrors.CodeStorageFailure, op+": storage failure")
}
