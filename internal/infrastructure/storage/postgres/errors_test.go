package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"tradebook/internal/core/apperror"
)

func TestStorageError(t *testing.T) {
	assert.NoError(t, StorageError("noop", nil))

	notFound := apperror.NewNotFound("party", "x")
	assert.Same(t, notFound, StorageError("get party", notFound))

	err := StorageError("insert invoice", errors.New("connection refused"))
	assert.True(t, apperror.IsStorageUnavailable(err))
	assert.True(t, apperror.IsRetryable(err))

	dup := StorageError("insert invoice", fmt.Errorf("exec: %w", &pgconn.PgError{
		Code:           "23505",
		TableName:      "doc_invoices",
		ConstraintName: "doc_invoices_invoice_no_key",
	}))
	appErr, ok := apperror.AsAppError(dup)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.False(t, apperror.IsRetryable(dup))
}
