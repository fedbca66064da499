package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

type taskService struct {
	tasks repository.TaskRepo
}

func NewTaskService(tasks repository.TaskRepo) TaskService {
	return &taskService{tasks: tasks}
}

// ListForUser returns the user's actionable tasks, soonest due first.
// includeClosed adds completed and superseded tasks.
func (s *taskService) ListForUser(ctx context.Context, userID string, includeClosed bool) ([]*domain.Task, error) {
	statuses := []domain.TaskStatus{domain.TaskPending, domain.TaskOverdue}
	if includeClosed {
		statuses = nil
	}
	tasks, err := s.tasks.ListByAssignee(ctx, userID, statuses...)
	if err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

func (s *taskService) ListForRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByRequest(ctx, kind, requestID)
	if err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

type inboxService struct {
	notifications repository.NotificationRepo
	now           func() time.Time
}

func NewInboxService(notifications repository.NotificationRepo) InboxService {
	return &inboxService{
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *inboxService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	ns, err := s.notifications.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, storageErr(err)
	}
	return ns, nil
}

// MarkRead is idempotent. Unknown IDs return repository.ErrNotFound.
func (s *inboxService) MarkRead(ctx context.Context, id string) error {
	err := s.notifications.MarkRead(ctx, id, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return storageErr(err)
}
