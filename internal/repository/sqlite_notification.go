package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
)

// SQLiteNotificationRepo is the per-user inbox written by the store sink.
type SQLiteNotificationRepo struct {
	db db.DBTX
}

func NewSQLiteNotificationRepo(conn db.DBTX) *SQLiteNotificationRepo {
	return &SQLiteNotificationRepo{db: conn}
}

func (r *SQLiteNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, user_id, kind, title, message, related_kind, related_id, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Message,
		string(n.RelatedKind),
		n.RelatedID,
		nullableTimeToString(n.ReadAt),
		formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListByUser returns the user's notifications newest first. An empty userID
// selects broadcast notifications.
func (r *SQLiteNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	query := `SELECT id, user_id, kind, title, message, related_kind, related_id, read_at, created_at
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var (
			n                   domain.Notification
			kind, related, when string
			readAt              sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &related, &n.RelatedID, &readAt, &when); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Kind = domain.NotificationKind(kind)
		n.RelatedKind = domain.RequestKind(related)
		n.ReadAt = parseNullableTime(readAt)
		if n.CreatedAt, err = parseTime(when); err != nil {
			return nil, fmt.Errorf("parsing notification created_at: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return out, nil
}

func (r *SQLiteNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE id = ? AND read_at IS NULL`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	n, err := checkRowsAffected(res, "notification")
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("checking notification %s: %w", id, err)
		}
		if exists == 0 {
			return fmt.Errorf("notification %s: %w", id, ErrNotFound)
		}
	}
	return nil
}
