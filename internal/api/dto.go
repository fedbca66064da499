package api

import (
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/service"
)

// RequestView is the JSON form of a request. Status is the display label.
type RequestView struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Kind        string    `json:"kind"`
	RequesterID string    `json:"requester_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func requestView(r *domain.Request) RequestView {
	return RequestView{
		ID:          r.ID,
		Code:        r.Code,
		Kind:        string(r.Kind),
		RequesterID: r.RequesterID,
		Amount:      r.Amount.StringFixed(2),
		Currency:    r.Currency,
		Status:      r.Status.String(),
		Outcome:     string(r.Status.Outcome),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type RecordView struct {
	ID         string     `json:"id"`
	Cycle      int        `json:"cycle"`
	Stage      int        `json:"stage"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	Label      string     `json:"label"`
	ApproverID *string    `json:"approver_id,omitempty"`
	Comments   string     `json:"comments,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func recordView(r *domain.ApprovalRecord) RecordView {
	return RecordView{
		ID:         r.ID,
		Cycle:      r.Cycle,
		Stage:      r.Stage,
		Role:       string(r.ApproverRole),
		Status:     string(r.Status),
		Label:      r.Label(),
		ApproverID: r.ApproverID,
		Comments:   r.Comments,
		ApprovedAt: r.ApprovedAt,
		CreatedAt:  r.CreatedAt,
	}
}

type TaskView struct {
	ID          string     `json:"id"`
	AssigneeID  string     `json:"assignee_id"`
	RequestKind string     `json:"request_kind"`
	RequestID   string     `json:"request_id"`
	Cycle       int        `json:"cycle"`
	Stage       int        `json:"stage"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func taskViews(tasks []*domain.Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskView{
			ID:          t.ID,
			AssigneeID:  t.AssigneeID,
			RequestKind: string(t.RequestKind),
			RequestID:   t.RequestID,
			Cycle:       t.Cycle,
			Stage:       t.Stage,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Status:      string(t.Status),
			CompletedAt: t.CompletedAt,
		})
	}
	return out
}

// StageView describes a stage opened by start, resubmit or an approval.
type StageView struct {
	Record  RecordView `json:"record"`
	Tasks   []TaskView `json:"tasks"`
	Warning string     `json:"warning,omitempty"`
}

func stageView(s *service.StageOpened) *StageView {
	if s == nil {
		return nil
	}
	v := &StageView{Record: recordView(s.Record), Tasks: taskViews(s.Tasks)}
	if s.Warning != nil {
		v.Warning = s.Warning.Error()
	}
	return v
}

type NotificationView struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	RelatedKind string     `json:"related_kind"`
	RelatedID   string     `json:"related_id"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func notificationViews(ns []*domain.Notification) []NotificationView {
	out := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationView{
			ID:          n.ID,
			Kind:        string(n.Kind),
			UserID:      n.UserID,
			Title:       n.Title,
			Message:     n.Message,
			RelatedKind: string(n.RelatedKind),
			RelatedID:   n.RelatedID,
			ReadAt:      n.ReadAt,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out
}

// CreateRequestBody creates an investment or a cash request depending on
// Kind.
type CreateRequestBody struct {
	Kind          string     `json:"kind"`
	RequesterID   string     `json:"requester_id"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Submit        bool       `json:"submit"`
	ProjectName   string     `json:"project_name"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	HorizonMonths int        `json:"horizon_months"`
	Purpose       string     `json:"purpose"`
	Payee         string     `json:"payee"`
	NeededBy      *time.Time `json:"needed_by"`
}

type DecisionBody struct {
	ActorID  string `json:"actor_id"`
	Action   string `json:"action"`
	Comments string `json:"comments"`
	// Stage guards against deciding a stage the caller has not seen.
	Stage int `json:"stage"`
}

type DecisionView struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Record    RecordView  `json:"record"`
	Status    string      `json:"status"`
	NextStage *StageView  `json:"next_stage,omitempty"`
	Request   RequestView `json:"request"`
}

type ResubmitBody struct {
	RequesterID string `json:"requester_id"`
}

type SweepView struct {
	Checked int        `json:"checked"`
	Overdue []TaskView `json:"overdue"`
	At      time.Time  `json:"at"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
