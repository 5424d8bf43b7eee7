package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tradebook/internal/core/apperror"
)

// unique_violation
const uniqueViolation = "23505"

// StorageError classifies a driver failure. AppErrors pass through untouched;
// unique violations become DUPLICATE_ENTRY; everything else is a retryable
// STORAGE_UNAVAILABLE, so an empty result is never mistaken for a failure.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.NewDuplicate(pgErr.TableName, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	}
	return apperror.NewStorageUnavailable(op, err)
}
