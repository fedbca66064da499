package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

// SQLiteSequenceRepo allocates per-kind request code numbers atomically using
// the request_sequences table.
type SQLiteSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteSequenceRepo(conn db.DBTX) *SQLiteSequenceRepo {
	return &SQLiteSequenceRepo{db: conn}
}

// Next returns the next sequence number for kind, starting at 1.
// Allocation is atomic and safe under concurrent writes.
func (r *SQLiteSequenceRepo) Next(ctx context.Context, kind domain.RequestKind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownRequestKind, kind)
	}
	seed := `INSERT OR IGNORE INTO request_sequences (kind, next_seq) VALUES (?, 1)`
	if _, err := r.db.ExecContext(ctx, seed, string(kind)); err != nil {
		return 0, fmt.Errorf("seeding sequence for %s: %w", kind, err)
	}

	var next int
	alloc := `UPDATE request_sequences
		SET next_seq = next_seq + 1
		WHERE kind = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, alloc, string(kind)).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next seq for %s: %w", kind, err)
	}
	return next, nil
}
