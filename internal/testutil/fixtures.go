package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testCodeCounter atomic.Int64

func nextCode(kind domain.RequestKind) string {
	return fmt.Sprintf("%s-T%04d", kind.CodePrefix(), testCodeCounter.Add(1))
}

func newBaseRequest(kind domain.RequestKind, requesterID string) domain.Request {
	now := time.Now().UTC()
	return domain.Request{
		ID:          uuid.New().String(),
		Code:        nextCode(kind),
		Kind:        kind,
		RequesterID: requesterID,
		Amount:      decimal.RequireFromString("2500.00"),
		Currency:    "USD",
		Status:      domain.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RequestOption adjusts the shared request fields of a fixture.
type RequestOption func(*domain.Request)

func WithAmount(amount string) RequestOption {
	return func(r *domain.Request) {
		r.Amount = decimal.RequireFromString(amount)
	}
}

func WithStatus(s domain.RequestStatus) RequestOption {
	return func(r *domain.Request) {
		r.Status = s
	}
}

func WithCode(code string) RequestOption {
	return func(r *domain.Request) {
		r.Code = code
	}
}

func NewTestInvestment(requesterID, project string, opts ...RequestOption) *domain.InvestmentRequest {
	inv := &domain.InvestmentRequest{
		Request:       newBaseRequest(domain.KindInvestment, requesterID),
		ProjectName:   project,
		Category:      "equipment",
		HorizonMonths: 12,
	}
	for _, opt := range opts {
		opt(&inv.Request)
	}
	return inv
}

func NewTestCashRequest(requesterID, purpose string, opts ...RequestOption) *domain.CashRequest {
	cr := &domain.CashRequest{
		Request: newBaseRequest(domain.KindCashRequest, requesterID),
		Purpose: purpose,
		Payee:   "Acme Supplies",
	}
	for _, opt := range opts {
		opt(&cr.Request)
	}
	return cr
}

func NewTestApprovalRecord(kind domain.RequestKind, requestID string, stage int, role domain.Role) *domain.ApprovalRecord {
	return &domain.ApprovalRecord{
		ID:           uuid.New().String(),
		RequestKind:  kind,
		RequestID:    requestID,
		Cycle:        1,
		Stage:        stage,
		ApproverRole: role,
		Status:       domain.ApprovalPending,
		CreatedAt:    time.Now().UTC(),
	}
}

func NewTestTask(assigneeID string, kind domain.RequestKind, requestID string, stage int, due time.Time) *domain.Task {
	return &domain.Task{
		ID:          uuid.New().String(),
		AssigneeID:  assigneeID,
		RequestKind: kind,
		RequestID:   requestID,
		Cycle:       1,
		Stage:       stage,
		TaskType:    domain.TaskTypeApproval,
		Title:       fmt.Sprintf("Approve %s stage %d", kind, stage),
		DueDate:     due,
		Status:      domain.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// RecordingSink captures notification intents. Set Err to make every call fail.
type RecordingSink struct {
	mu      sync.Mutex
	intents []domain.NotificationIntent
	Err     error
}

func (s *RecordingSink) Notify(_ context.Context, intent domain.NotificationIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
	return s.Err
}

func (s *RecordingSink) Intents() []domain.NotificationIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.NotificationIntent, len(s.intents))
	copy(out, s.intents)
	return out
}

// OfKind filters the captured intents.
func (s *RecordingSink) OfKind(kind domain.NotificationKind) []domain.NotificationIntent {
	var out []domain.NotificationIntent
	for _, in := range s.Intents() {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = nil
}
