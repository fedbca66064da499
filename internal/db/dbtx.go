package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Repositories depend on it so
// the engine can compose several writes into one unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

const sqliteConstraintUnique = 2067

// IsUniqueViolation reports whether err is a UNIQUE constraint failure,
// including violations of partial unique indexes.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintUnique {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
