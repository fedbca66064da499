package service

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tollgate/internal/domain"
)

func requestSummary(req *domain.Request) string {
	return fmt.Sprintf("%s %s (%s %s)", req.Kind.DisplayName(), req.DisplayCode(), req.Amount.StringFixed(2), req.Currency)
}

func withComments(msg, comments string) string {
	if c := strings.TrimSpace(comments); c != "" {
		return msg + ": " + c
	}
	return msg
}

func taskAssignedIntent(req *domain.Request, task *domain.Task) domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:        domain.NotifyTaskAssigned,
		UserID:      task.AssigneeID,
		Title:       task.Title,
		Message:     fmt.Sprintf("%s Due %s.", task.Description, task.DueDate.Format("2006-01-02 15:04 MST")),
		RelatedKind: req.Kind,
		RelatedID:   req.ID,
	}
}

func requestApprovedIntent(req *domain.Request) domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:        domain.NotifyRequestApproved,
		UserID:      req.RequesterID,
		Title:       req.DisplayCode() + " approved",
		Message:     "Your " + requestSummary(req) + " has been approved.",
		RelatedKind: req.Kind,
		RelatedID:   req.ID,
	}
}

func requestRejectedIntent(req *domain.Request, status domain.RequestStatus, comments string) domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:        domain.NotifyRequestRejected,
		UserID:      req.RequesterID,
		Title:       req.DisplayCode() + " rejected",
		Message:     withComments(fmt.Sprintf("%s: %s", status, requestSummary(req)), comments),
		RelatedKind: req.Kind,
		RelatedID:   req.ID,
	}
}

func changesRequestedIntent(req *domain.Request, approverRole domain.Role, comments string) domain.NotificationIntent {
	who := "An approver"
	if approverRole != "" {
		who = approverRole.DisplayName()
	}
	return domain.NotificationIntent{
		Kind:        domain.NotifyChangesRequested,
		UserID:      req.RequesterID,
		Title:       req.DisplayCode() + " needs changes",
		Message:     withComments(fmt.Sprintf("%s requested changes to your %s", who, requestSummary(req)), comments),
		RelatedKind: req.Kind,
		RelatedID:   req.ID,
	}
}

// operatorAlertIntent addresses one admin, or everyone when adminID is empty.
func operatorAlertIntent(req *domain.Request, cfg domain.WorkflowStageConfig, adminID string) domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:   domain.NotifyOperatorAlert,
		UserID: adminID,
		Title:  fmt.Sprintf("%s stage %d has no approvers", req.DisplayCode(), cfg.StageNumber),
		Message: fmt.Sprintf("%s: %v (role %s). Assign the role to a user so the stage can be decided.",
			requestSummary(req), domain.ErrZeroEligibleApprovers, cfg.RequiredRole),
		RelatedKind: req.Kind,
		RelatedID:   req.ID,
	}
}

func taskOverdueIntent(task *domain.Task) domain.NotificationIntent {
	return domain.NotificationIntent{
		Kind:        domain.NotifyTaskOverdue,
		UserID:      task.AssigneeID,
		Title:       "Overdue: " + task.Title,
		Message:     fmt.Sprintf("This approval was due %s and is still waiting for you.", task.DueDate.Format("2006-01-02 15:04 MST")),
		RelatedKind: task.RequestKind,
		RelatedID:   task.RequestID,
	}
}
