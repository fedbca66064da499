package domain

import (
	"fmt"
	"strings"
)

type StatusOutcome string

const (
	OutcomeNew              StatusOutcome = "new"
	OutcomeDraft            StatusOutcome = "draft"
	OutcomeModified         StatusOutcome = "modified"
	OutcomeInProgress       StatusOutcome = "in_progress"
	OutcomeApproved         StatusOutcome = "approved"
	OutcomeRejected         StatusOutcome = "rejected"
	OutcomeChangesRequested StatusOutcome = "changes_requested"
)

// RequestStatus is the structured form of a request's visible status.
// Role is set for in-progress stage approvals and for role-qualified
// rejections; it is empty otherwise. The display label is only produced by
// String.
type RequestStatus struct {
	Outcome StatusOutcome
	Role    Role
}

var (
	StatusNew              = RequestStatus{Outcome: OutcomeNew}
	StatusDraft            = RequestStatus{Outcome: OutcomeDraft}
	StatusModified         = RequestStatus{Outcome: OutcomeModified}
	StatusApproved         = RequestStatus{Outcome: OutcomeApproved}
	StatusChangesRequested = RequestStatus{Outcome: OutcomeChangesRequested}
)

// StageApprovedBy is the status after an intermediate stage is approved.
func StageApprovedBy(role Role) RequestStatus {
	return RequestStatus{Outcome: OutcomeInProgress, Role: role}
}

// RejectedBy is the status after a rejection. An empty role yields the
// unqualified "rejected" label.
func RejectedBy(role Role) RequestStatus {
	return RequestStatus{Outcome: OutcomeRejected, Role: role}
}

// StatusForDecision projects a decision onto the request status. final is
// true when the decided stage is the last configured stage.
func StatusForDecision(action Action, role Role, final bool) (RequestStatus, error) {
	switch action {
	case ActionApprove:
		if final {
			return StatusApproved, nil
		}
		return StageApprovedBy(role), nil
	case ActionReject:
		return RejectedBy(role), nil
	case ActionChangesRequested:
		return StatusChangesRequested, nil
	}
	return RequestStatus{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
}

// String renders the display label, e.g. "Committee rejected".
func (s RequestStatus) String() string {
	switch s.Outcome {
	case OutcomeNew:
		return "New"
	case OutcomeDraft:
		return "Draft"
	case OutcomeModified:
		return "Modified"
	case OutcomeInProgress:
		return DecisionLabel(ActionApprove, s.Role)
	case OutcomeApproved:
		return "approved"
	case OutcomeRejected:
		return DecisionLabel(ActionReject, s.Role)
	case OutcomeChangesRequested:
		return "changes_requested"
	}
	return string(s.Outcome)
}

// IsRejected reports whether the status belongs to the rejected family.
func (s RequestStatus) IsRejected() bool {
	return s.Outcome == OutcomeRejected
}

// CanResubmit reports whether a resubmission may restart the workflow.
// Both rejected-family statuses and changes_requested qualify.
func (s RequestStatus) CanResubmit() bool {
	return s.Outcome == OutcomeRejected || s.Outcome == OutcomeChangesRequested
}

// CanStart reports whether a fresh workflow may be started from this status
// without going through resubmission.
func (s RequestStatus) CanStart() bool {
	switch s.Outcome {
	case OutcomeNew, OutcomeDraft, OutcomeModified, "":
		return true
	}
	return false
}

// DecisionLabel is the outcome label recorded on an approval record.
// changes_requested is never role-qualified.
func DecisionLabel(action Action, role Role) string {
	var verb string
	switch action {
	case ActionApprove:
		verb = "approved"
	case ActionReject:
		verb = "rejected"
	default:
		return string(ActionChangesRequested)
	}
	if role == "" {
		return verb
	}
	return role.DisplayName() + " " + verb
}

// ParseStatus parses a display label back into its structured form.
func ParseStatus(label string) (RequestStatus, error) {
	trimmed := strings.TrimSpace(label)
	switch strings.ToLower(trimmed) {
	case "new":
		return StatusNew, nil
	case "draft":
		return StatusDraft, nil
	case "modified":
		return StatusModified, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return RejectedBy(""), nil
	case "changes_requested":
		return StatusChangesRequested, nil
	}

	idx := strings.LastIndex(trimmed, " ")
	if idx <= 0 {
		return RequestStatus{}, fmt.Errorf("unrecognized status %q", label)
	}
	role, ok := roleByDisplayName(trimmed[:idx])
	if !ok {
		return RequestStatus{}, fmt.Errorf("unrecognized role in status %q", label)
	}
	switch strings.ToLower(trimmed[idx+1:]) {
	case "approved":
		return StageApprovedBy(role), nil
	case "rejected":
		return RejectedBy(role), nil
	}
	return RequestStatus{}, fmt.Errorf("unrecognized status %q", label)
}
