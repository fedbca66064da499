package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// RequestFilter narrows request listings. Zero values match everything.
type RequestFilter struct {
	RequesterID string
	Outcomes    []domain.StatusOutcome
	Limit       int
}

// RequestRepo is the narrow, kind-independent request view the engine uses.
// Both concrete request kinds satisfy it identically.
type RequestRepo interface {
	Kind() domain.RequestKind
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetByCode(ctx context.Context, code string) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
	// UpdateStatusIf changes the status only while the current outcome is one
	// of from. It reports whether a row changed.
	UpdateStatusIf(ctx context.Context, id string, status domain.RequestStatus, from ...domain.StatusOutcome) (bool, error)
}

type InvestmentRepo interface {
	RequestRepo
	Create(ctx context.Context, r *domain.InvestmentRequest) error
	GetInvestment(ctx context.Context, id string) (*domain.InvestmentRequest, error)
}

type CashRequestRepo interface {
	RequestRepo
	Create(ctx context.Context, r *domain.CashRequest) error
	GetCashRequest(ctx context.Context, id string) (*domain.CashRequest, error)
}

type ApprovalRepo interface {
	// Create returns ErrDuplicate when the request already has a pending
	// record or the cycle already contains the stage.
	Create(ctx context.Context, rec *domain.ApprovalRecord) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalRecord, error)
	GetPending(ctx context.Context, kind domain.RequestKind, requestID string) (*domain.ApprovalRecord, error)
	// Decide persists a decided record only if the stored row is still
	// pending. It reports whether the row changed.
	Decide(ctx context.Context, rec *domain.ApprovalRecord) (bool, error)
	ListByRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.ApprovalRecord, error)
	LatestCycle(ctx context.Context, kind domain.RequestKind, requestID string) (int, error)
	CountPending(ctx context.Context, kind domain.RequestKind, requestID string) (int, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string, statuses ...domain.TaskStatus) ([]*domain.Task, error)
	ListPastDue(ctx context.Context, now time.Time) ([]*domain.Task, error)
	// CompleteForAssignee completes the assignee's actionable tasks for one
	// stage instance. Tasks of other cycles are left alone.
	CompleteForAssignee(ctx context.Context, kind domain.RequestKind, requestID string, cycle, stage int, assigneeID string, at time.Time) (int64, error)
	// SupersedeStage retires the remaining actionable tasks of a resolved stage instance.
	SupersedeStage(ctx context.Context, kind domain.RequestKind, requestID string, cycle, stage int, at time.Time) (int64, error)
	// MarkOverdue flips a task to overdue only while it is pending and past due.
	MarkOverdue(ctx context.Context, id string, now time.Time) (bool, error)
}

type RoleRepo interface {
	Assign(ctx context.Context, userID string, role domain.Role) error
	Remove(ctx context.Context, userID string) error
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
	ListByRole(ctx context.Context, role domain.Role) ([]string, error)
	List(ctx context.Context) ([]domain.RoleAssignment, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}

type SequenceRepo interface {
	Next(ctx context.Context, kind domain.RequestKind) (int, error)
}
