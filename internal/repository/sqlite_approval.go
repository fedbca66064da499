package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

const approvalColumns = `id, request_kind, request_id, cycle, stage, approver_id, approver_role,
	status, comments, approved_at, created_at`

// SQLiteApprovalRepo implements ApprovalRepo using a SQLite database.
type SQLiteApprovalRepo struct {
	db db.DBTX
}

func NewSQLiteApprovalRepo(conn db.DBTX) *SQLiteApprovalRepo {
	return &SQLiteApprovalRepo{db: conn}
}

func (r *SQLiteApprovalRepo) Create(ctx context.Context, rec *domain.ApprovalRecord) error {
	query := `INSERT INTO approval_records (` + approvalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.RequestKind),
		rec.RequestID,
		rec.Cycle,
		rec.Stage,
		nullableString(rec.ApproverID),
		string(rec.ApproverRole),
		string(rec.Status),
		rec.Comments,
		nullableTimeToString(rec.ApprovedAt),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("approval record for %s %s stage %d: %w", rec.RequestKind, rec.RequestID, rec.Stage, ErrDuplicate)
		}
		return fmt.Errorf("inserting approval record: %w", err)
	}
	return nil
}

func (r *SQLiteApprovalRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_records WHERE id = ?`
	return scanApproval(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteApprovalRepo) GetPending(ctx context.Context, kind domain.RequestKind, requestID string) (*domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_records
		WHERE request_kind = ? AND request_id = ? AND status = 'pending'`
	return scanApproval(r.db.QueryRowContext(ctx, query, string(kind), requestID))
}

func (r *SQLiteApprovalRepo) Decide(ctx context.Context, rec *domain.ApprovalRecord) (bool, error) {
	query := `UPDATE approval_records
		SET status = ?, approver_id = ?, approver_role = ?, comments = ?, approved_at = ?
		WHERE id = ? AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query,
		string(rec.Status),
		nullableString(rec.ApproverID),
		string(rec.ApproverRole),
		rec.Comments,
		nullableTimeToString(rec.ApprovedAt),
		rec.ID,
	)
	if err != nil {
		return false, fmt.Errorf("deciding approval record %s: %w", rec.ID, err)
	}
	n, err := checkRowsAffected(res, "approval record")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLiteApprovalRepo) ListByRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_records
		WHERE request_kind = ? AND request_id = ?
		ORDER BY stage, created_at, cycle`
	rows, err := r.db.QueryContext(ctx, query, string(kind), requestID)
	if err != nil {
		return nil, fmt.Errorf("listing approval records: %w", err)
	}
	defer rows.Close()

	var out []*domain.ApprovalRecord
	for rows.Next() {
		rec, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating approval records: %w", err)
	}
	return out, nil
}

// LatestCycle returns 0 when the request has no approval records.
func (r *SQLiteApprovalRepo) LatestCycle(ctx context.Context, kind domain.RequestKind, requestID string) (int, error) {
	var cycle int
	query := `SELECT COALESCE(MAX(cycle), 0) FROM approval_records WHERE request_kind = ? AND request_id = ?`
	if err := r.db.QueryRowContext(ctx, query, string(kind), requestID).Scan(&cycle); err != nil {
		return 0, fmt.Errorf("reading latest cycle: %w", err)
	}
	return cycle, nil
}

func (r *SQLiteApprovalRepo) CountPending(ctx context.Context, kind domain.RequestKind, requestID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM approval_records WHERE request_kind = ? AND request_id = ? AND status = 'pending'`
	if err := r.db.QueryRowContext(ctx, query, string(kind), requestID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending approval records: %w", err)
	}
	return n, nil
}

func scanApproval(row rowScanner) (*domain.ApprovalRecord, error) {
	var (
		rec                domain.ApprovalRecord
		kind, role, status string
		approverID         sql.NullString
		approvedAt         sql.NullString
		createdAt          string
	)
	err := row.Scan(&rec.ID, &kind, &rec.RequestID, &rec.Cycle, &rec.Stage, &approverID, &role,
		&status, &rec.Comments, &approvedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("approval record: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning approval record: %w", err)
	}
	rec.RequestKind = domain.RequestKind(kind)
	rec.ApproverRole = domain.Role(role)
	rec.Status = domain.ApprovalStatus(status)
	rec.ApproverID = stringPtr(approverID)
	rec.ApprovedAt = parseNullableTime(approvedAt)
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing approval created_at: %w", err)
	}
	return &rec, nil
}
