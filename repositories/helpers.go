package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func checkAffectedRows(result sql.Result, want int64, mismatchError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected != want {
		return fmt.Errorf("%w: expected %d rows, got %d", mismatchError, want, rowsAffected)
	}
	return nil
}

func pqErrorCode(err error) (pq.ErrorCode, *pq.Error) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, pqErr
	}
	return "", nil
}
