package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// StoreSink persists intents into the in-app inbox. Intents without a user
// (operator alerts) are stored with an empty user and listed by `inbox --broadcast`.
type StoreSink struct {
	notifications repository.NotificationRepo
	now           func() time.Time
}

func NewStoreSink(conn db.DBTX) *StoreSink {
	return &StoreSink{
		notifications: repository.NewSQLiteNotificationRepo(conn),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *StoreSink) Notify(ctx context.Context, intent domain.NotificationIntent) error {
	n := &domain.Notification{
		ID:                 uuid.New().String(),
		NotificationIntent: intent,
		CreatedAt:          s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	return nil
}
