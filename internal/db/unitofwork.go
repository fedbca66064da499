package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/tollgate/internal/tracing"
)

// UnitOfWork runs fn inside one transaction. fn receives a tx-backed DBTX;
// callers build tx-scoped repositories from it. Any error from fn rolls
// the whole unit back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx begins an IMMEDIATE transaction (see dsn), so the write lock is
// held from the first statement and conditional updates cannot interleave.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	ctx, span := tracing.Start(ctx, "db.WithinTx", nil)
	committed := false
	defer func() {
		if p := recover(); p != nil {
			tracing.End(span, fmt.Errorf("panic in transaction: %v", p))
			panic(p)
		}
		span.WithAttributes(map[string]string{"db.committed": fmt.Sprint(committed)})
		tracing.End(span, err)
	}()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
