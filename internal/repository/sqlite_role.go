package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

// SQLiteRoleRepo stores the user → role directory. A user holds one role;
// assigning again replaces it.
type SQLiteRoleRepo struct {
	db db.DBTX
}

func NewSQLiteRoleRepo(conn db.DBTX) *SQLiteRoleRepo {
	return &SQLiteRoleRepo{db: conn}
}

func (r *SQLiteRoleRepo) Assign(ctx context.Context, userID string, role domain.Role) error {
	query := `INSERT INTO role_assignments (user_id, role, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET role = excluded.role`
	if _, err := r.db.ExecContext(ctx, query, userID, string(role), nowUTC()); err != nil {
		return fmt.Errorf("assigning role to %s: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRoleRepo) Remove(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM role_assignments WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("removing role of %s: %w", userID, err)
	}
	n, err := checkRowsAffected(res, "role assignment")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("role assignment %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRoleRepo) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM role_assignments WHERE user_id = ?`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("role assignment %s: %w", userID, ErrNotFound)
		}
		return "", fmt.Errorf("reading role of %s: %w", userID, err)
	}
	return domain.Role(role), nil
}

// ListByRole returns user IDs holding role in a stable order.
func (r *SQLiteRoleRepo) ListByRole(ctx context.Context, role domain.Role) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM role_assignments WHERE role = ? ORDER BY user_id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("listing users in role %s: %w", role, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role assignments: %w", err)
	}
	return users, nil
}

func (r *SQLiteRoleRepo) List(ctx context.Context) ([]domain.RoleAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, role, created_at FROM role_assignments ORDER BY role, user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing role assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.RoleAssignment
	for rows.Next() {
		var a domain.RoleAssignment
		var role, created string
		if err := rows.Scan(&a.UserID, &role, &created); err != nil {
			return nil, fmt.Errorf("scanning role assignment: %w", err)
		}
		a.Role = domain.Role(role)
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parsing role assignment created_at: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role assignments: %w", err)
	}
	return out, nil
}
