package domain

import (
	"fmt"
	"time"
)

// WorkflowStageConfig is one ordered step of a request kind's approval
// sequence. It is configuration, not per-request data.
type WorkflowStageConfig struct {
	StageNumber  int  `yaml:"stage" toml:"stage"`
	RequiredRole Role `yaml:"role" toml:"role"`
	SLAHours     int  `yaml:"sla_hours" toml:"sla_hours"`
}

// SLA returns the stage's service-level duration.
func (c WorkflowStageConfig) SLA() time.Duration {
	return time.Duration(c.SLAHours) * time.Hour
}

// ApprovalRecord is one stage instance of a request's approval sequence.
// Cycle starts at 1 and increases with every resubmission; within a cycle
// stage numbers are contiguous from 1.
type ApprovalRecord struct {
	ID           string
	RequestKind  RequestKind
	RequestID    string
	Cycle        int
	Stage        int
	ApproverID   *string
	ApproverRole Role
	Status       ApprovalStatus
	Comments     string
	ApprovedAt   *time.Time
	CreatedAt    time.Time
}

func (r *ApprovalRecord) IsPending() bool {
	return r.Status == ApprovalPending
}

// Label returns "pending" or the role-qualified outcome label.
func (r *ApprovalRecord) Label() string {
	switch r.Status {
	case ApprovalPending:
		return string(ApprovalPending)
	case ApprovalApproved:
		return DecisionLabel(ActionApprove, r.ApproverRole)
	case ApprovalRejected:
		return DecisionLabel(ActionReject, r.ApproverRole)
	case ApprovalChangesRequested:
		return DecisionLabel(ActionChangesRequested, r.ApproverRole)
	}
	return string(r.Status)
}

// Decide moves a pending record to its terminal state. A record is decided
// exactly once.
func (r *ApprovalRecord) Decide(actorID string, role Role, action Action, comments string, at time.Time) error {
	if !r.IsPending() {
		return fmt.Errorf("%w: record %s is %s", ErrAlreadyDecided, r.ID, r.Label())
	}
	switch action {
	case ActionApprove:
		r.Status = ApprovalApproved
	case ActionReject:
		r.Status = ApprovalRejected
	case ActionChangesRequested:
		r.Status = ApprovalChangesRequested
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	approver := actorID
	decidedAt := at
	r.ApproverID = &approver
	r.ApproverRole = role
	r.Comments = comments
	r.ApprovedAt = &decidedAt
	return nil
}
