package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalRecord_DecideOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := &ApprovalRecord{ID: "r1", Stage: 2, Status: ApprovalPending}
	assert.Equal(t, "pending", rec.Label())

	require.NoError(t, rec.Decide("alice", RoleCommitteeMember, ActionReject, "too risky", now))
	assert.Equal(t, ApprovalRejected, rec.Status)
	assert.Equal(t, "Committee rejected", rec.Label())
	require.NotNil(t, rec.ApproverID)
	assert.Equal(t, "alice", *rec.ApproverID)
	assert.Equal(t, "too risky", rec.Comments)
	require.NotNil(t, rec.ApprovedAt)
	assert.Equal(t, now, *rec.ApprovedAt)

	err := rec.Decide("bob", RoleCommitteeMember, ActionApprove, "", now)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	assert.Equal(t, "alice", *rec.ApproverID, "a decided record is never overwritten")
}

func TestApprovalRecord_LabelWithoutRole(t *testing.T) {
	rec := &ApprovalRecord{Status: ApprovalPending}
	require.NoError(t, rec.Decide("x", "", ActionApprove, "", time.Now()))
	assert.Equal(t, "approved", rec.Label())

	rec = &ApprovalRecord{Status: ApprovalPending}
	require.NoError(t, rec.Decide("x", RoleManager, ActionChangesRequested, "", time.Now()))
	assert.Equal(t, "changes_requested", rec.Label())
}

func TestApprovalRecord_DecideInvalidAction(t *testing.T) {
	rec := &ApprovalRecord{Status: ApprovalPending}
	err := rec.Decide("x", RoleManager, "escalate", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.True(t, rec.IsPending())
}

func TestWorkflowStageConfig_SLA(t *testing.T) {
	c := WorkflowStageConfig{StageNumber: 1, RequiredRole: RoleManager, SLAHours: 48}
	assert.Equal(t, 48*time.Hour, c.SLA())
}

func TestTask_PastDueAndActionable(t *testing.T) {
	now := time.Now()
	task := &Task{Status: TaskPending, DueDate: now.Add(-time.Minute)}
	assert.True(t, task.IsPastDue(now))
	assert.True(t, task.Actionable())

	task.Status = TaskOverdue
	assert.False(t, task.IsPastDue(now), "already overdue")
	assert.True(t, task.Actionable(), "overdue tasks stay actionable")

	task.Status = TaskSuperseded
	assert.False(t, task.Actionable())
}
