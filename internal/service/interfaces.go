package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// DecisionInput is one approver's decision on a request's pending stage.
// Stage is optional; when set, the decision only applies if that stage is
// the one pending.
type DecisionInput struct {
	Kind      domain.RequestKind
	RequestID string
	ActorID   string
	Action    domain.Action
	Comments  string
	Stage     int
}

// DecisionResult reports a processed decision.
type DecisionResult struct {
	Success bool
	Message string
	Record  *domain.ApprovalRecord
	Status  domain.RequestStatus
	// NextStage is the stage opened by this decision, or nil.
	NextStage *StageOpened
}

// StageOpened describes a freshly opened stage and its fanned-out tasks.
type StageOpened struct {
	Record *domain.ApprovalRecord
	Tasks  []*domain.Task
	// Warning is ErrZeroEligibleApprovers when nobody holds the stage role.
	Warning error
}

type WorkflowEngine interface {
	StartWorkflow(ctx context.Context, kind domain.RequestKind, requestID string) (*StageOpened, error)
	ProcessDecision(ctx context.Context, in DecisionInput) (*DecisionResult, error)
	Resubmit(ctx context.Context, kind domain.RequestKind, requestID, requesterID string) (*StageOpened, error)
	QueryApprovalHistory(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.ApprovalRecord, error)
}

type RequestService interface {
	// CreateInvestment stores a new request as Draft, or as New and starts its
	// workflow when submit is set.
	CreateInvestment(ctx context.Context, r *domain.InvestmentRequest, submit bool) (*StageOpened, error)
	CreateCash(ctx context.Context, r *domain.CashRequest, submit bool) (*StageOpened, error)
	Get(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error)
	// GetByCode infers the kind from the code prefix.
	GetByCode(ctx context.Context, code string) (*domain.Request, error)
	GetInvestment(ctx context.Context, id string) (*domain.InvestmentRequest, error)
	GetCash(ctx context.Context, id string) (*domain.CashRequest, error)
	List(ctx context.Context, kind domain.RequestKind, filter repository.RequestFilter) ([]*domain.Request, error)
}

type TaskService interface {
	ListForUser(ctx context.Context, userID string, includeClosed bool) ([]*domain.Task, error)
	ListForRequest(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.Task, error)
}

type InboxService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// SweepResult summarizes one SLA pass.
type SweepResult struct {
	Checked int
	Overdue []*domain.Task
	At      time.Time
}

type SLAService interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}
