package domain

import (
	"fmt"
	"strings"
)

type RequestKind string

const (
	KindInvestment  RequestKind = "investment"
	KindCashRequest RequestKind = "cash_request"
)

// KnownRequestKinds is the canonical set of request kinds with backing storage.
var KnownRequestKinds = []RequestKind{KindInvestment, KindCashRequest}

// Valid reports whether k names a request kind with backing storage.
func (k RequestKind) Valid() bool {
	for _, known := range KnownRequestKinds {
		if k == known {
			return true
		}
	}
	return false
}

// CodePrefix is the prefix of the human-readable request code (INV-0001).
func (k RequestKind) CodePrefix() string {
	switch k {
	case KindInvestment:
		return "INV"
	case KindCashRequest:
		return "CR"
	default:
		return strings.ToUpper(string(k))
	}
}

// DisplayName returns the kind as shown in task titles and notifications.
func (k RequestKind) DisplayName() string {
	switch k {
	case KindInvestment:
		return "investment request"
	case KindCashRequest:
		return "cash request"
	default:
		return string(k)
	}
}

// KindFromCode infers the request kind from a code such as "CR-0007".
func KindFromCode(code string) (RequestKind, error) {
	prefix, _, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(code)), "-")
	if ok {
		for _, k := range KnownRequestKinds {
			if k.CodePrefix() == prefix {
				return k, nil
			}
		}
	}
	return "", fmt.Errorf("%w: cannot infer kind from code %q", ErrUnknownRequestKind, code)
}

// ParseRequestKind accepts the canonical kind names plus a few CLI aliases.
func ParseRequestKind(s string) (RequestKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "investment", "inv":
		return KindInvestment, nil
	case "cash_request", "cash-request", "cash", "cr":
		return KindCashRequest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRequestKind, s)
}

type Role string

const (
	RoleManager         Role = "manager"
	RoleCommitteeMember Role = "committee_member"
	RoleFinance         Role = "finance"
	RoleAdmin           Role = "admin"
)

var roleDisplayNames = map[Role]string{
	RoleManager:         "Manager",
	RoleCommitteeMember: "Committee",
	RoleFinance:         "Finance",
	RoleAdmin:           "Admin",
}

// DisplayName returns the role prefix used in role-qualified labels
// ("Committee rejected"). Unregistered roles are title-cased.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(string(r), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// roleByDisplayName resolves a label prefix back to its role.
func roleByDisplayName(name string) (Role, bool) {
	for role, display := range roleDisplayNames {
		if strings.EqualFold(display, name) {
			return role, true
		}
	}
	return "", false
}

type Action string

const (
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
	ActionChangesRequested Action = "changes_requested"
)

// ParseAction validates a decision action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	case ActionChangesRequested, "changes-requested", "changes":
		return ActionChangesRequested, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
	TaskSuperseded TaskStatus = "superseded"
)

type TaskType string

const TaskTypeApproval TaskType = "approval"

type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

type NotificationKind string

const (
	NotifyRequestApproved  NotificationKind = "request_approved"
	NotifyRequestRejected  NotificationKind = "request_rejected"
	NotifyChangesRequested NotificationKind = "changes_requested"
	NotifyOperatorAlert    NotificationKind = "operator_alert"
	NotifyTaskAssigned     NotificationKind = "task_assigned"
	NotifyTaskOverdue      NotificationKind = "task_overdue"
)
