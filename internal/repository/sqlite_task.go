package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

const taskColumns = `id, assignee_id, request_kind, request_id, cycle, stage, task_type, title, description,
	due_date, status, created_at, completed_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.AssigneeID,
		string(t.RequestKind),
		t.RequestID,
		t.Cycle,
		t.Stage,
		string(t.TaskType),
		t.Title,
		t.Description,
		formatTime(t.DueDate),
		string(t.Status),
		formatTime(t.CreatedAt),
		nullableTimeToString(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTaskRepo) ListByRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE request_kind = ? AND request_id = ?
		ORDER BY cycle, stage, created_at, assignee_id`
	return r.queryTasks(ctx, query, string(kind), requestID)
}

// ListByAssignee returns the assignee's tasks, optionally narrowed to statuses,
// soonest due first.
func (r *SQLiteTaskRepo) ListByAssignee(ctx context.Context, assigneeID string, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = ?`
	args := []any{assigneeID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	query += ` ORDER BY due_date, created_at`
	return r.queryTasks(ctx, query, args...)
}

// ListPastDue returns pending tasks whose due date is strictly before now.
func (r *SQLiteTaskRepo) ListPastDue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'pending' AND due_date < ?
		ORDER BY due_date`
	return r.queryTasks(ctx, query, formatTime(now))
}

func (r *SQLiteTaskRepo) CompleteForAssignee(ctx context.Context, kind domain.RequestKind, requestID string, cycle, stage int, assigneeID string, at time.Time) (int64, error) {
	query := `UPDATE tasks SET status = 'completed', completed_at = ?
		WHERE request_kind = ? AND request_id = ? AND cycle = ? AND stage = ? AND assignee_id = ?
		  AND status IN ('pending', 'overdue')`
	res, err := r.db.ExecContext(ctx, query, formatTime(at), string(kind), requestID, cycle, stage, assigneeID)
	if err != nil {
		return 0, fmt.Errorf("completing tasks for %s: %w", assigneeID, err)
	}
	return checkRowsAffected(res, "tasks")
}

func (r *SQLiteTaskRepo) SupersedeStage(ctx context.Context, kind domain.RequestKind, requestID string, cycle, stage int, at time.Time) (int64, error) {
	query := `UPDATE tasks SET status = 'superseded', completed_at = ?
		WHERE request_kind = ? AND request_id = ? AND cycle = ? AND stage = ?
		  AND status IN ('pending', 'overdue')`
	res, err := r.db.ExecContext(ctx, query, formatTime(at), string(kind), requestID, cycle, stage)
	if err != nil {
		return 0, fmt.Errorf("superseding stage %d tasks: %w", stage, err)
	}
	return checkRowsAffected(res, "tasks")
}

func (r *SQLiteTaskRepo) MarkOverdue(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE tasks SET status = 'overdue'
		WHERE id = ? AND status = 'pending' AND due_date < ?`
	res, err := r.db.ExecContext(ctx, query, id, formatTime(now))
	if err != nil {
		return false, fmt.Errorf("marking task %s overdue: %w", id, err)
	}
	n, err := checkRowsAffected(res, "task")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLiteTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return out, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                                        domain.Task
		kind, taskType, status, dueDate, created string
		completedAt                              sql.NullString
	)
	err := row.Scan(&t.ID, &t.AssigneeID, &kind, &t.RequestID, &t.Cycle, &t.Stage, &taskType, &t.Title, &t.Description,
		&dueDate, &status, &created, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.RequestKind = domain.RequestKind(kind)
	t.TaskType = domain.TaskType(taskType)
	t.Status = domain.TaskStatus(status)
	t.CompletedAt = parseNullableTime(completedAt)
	if t.DueDate, err = parseTime(dueDate); err != nil {
		return nil, fmt.Errorf("parsing task due_date: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parsing task created_at: %w", err)
	}
	return &t, nil
}
