package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func openTestUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertRole(ctx context.Context, tx db.DBTX, userID, role string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO role_assignments (user_id, role, created_at) VALUES (?, ?, '2026-01-01T00:00:00Z')`,
		userID, role)
	return err
}

func roleOf(t *testing.T, database *sql.DB, userID string) (string, bool) {
	t.Helper()
	var role string
	err := database.QueryRow(`SELECT role FROM role_assignments WHERE user_id = ?`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return role, true
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertRole(ctx, tx, "alice", "manager")
	})
	require.NoError(t, err)

	role, found := roleOf(t, database, "alice")
	assert.True(t, found, "row should exist after commit")
	assert.Equal(t, "manager", role)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertRole(ctx, tx, "bob", "finance"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	_, found := roleOf(t, database, "bob")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertRole(ctx, tx, "carol", "admin")
			panic("boom")
		})
	})

	_, found := roleOf(t, database, "carol")
	assert.False(t, found, "row should not exist after panic rollback")
}

func TestIsUniqueViolation(t *testing.T) {
	database, uow := openTestUoW(t)
	ctx := context.Background()

	require.NoError(t, insertRole(ctx, database, "dave", "manager"))
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return insertRole(ctx, tx, "dave", "finance")
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
	assert.False(t, db.IsUniqueViolation(errors.New("disk I/O error")))
	assert.False(t, db.IsUniqueViolation(nil))
}

func TestWithinTx_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := tracing.InitWithExporter("tollgate-test", exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, uow := openTestUoW(t)
	ctx := context.Background()

	require.NoError(t, uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return insertRole(ctx, tx, "erin", "manager")
	}))
	require.Error(t, uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		return errors.New("deliberate failure")
	}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "db.WithinTx", s.Name)
	}
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
