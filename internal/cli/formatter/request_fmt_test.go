package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var fmtNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func sampleRequest(status domain.RequestStatus) *domain.Request {
	return &domain.Request{
		ID:          "0f1e2d3c-aaaa-bbbb-cccc-1234567890ab",
		Code:        "INV-0007",
		Kind:        domain.KindInvestment,
		RequesterID: "req-1",
		Amount:      decimal.NewFromInt(250000),
		Currency:    "USD",
		Status:      status,
		CreatedAt:   fmtNow.Add(-48 * time.Hour),
		UpdatedAt:   fmtNow.Add(-2 * time.Hour),
	}
}

func decidedRecord(cycle, stage int, status domain.ApprovalStatus, role domain.Role, actor string) *domain.ApprovalRecord {
	at := fmtNow.Add(-time.Hour)
	rec := &domain.ApprovalRecord{
		ID:           "rec",
		RequestKind:  domain.KindInvestment,
		RequestID:    "0f1e2d3c",
		Cycle:        cycle,
		Stage:        stage,
		ApproverRole: role,
		Status:       status,
		CreatedAt:    at,
	}
	if status != domain.ApprovalPending {
		rec.ApproverID = &actor
		rec.ApprovedAt = &at
	}
	return rec
}

func TestFormatRequestList(t *testing.T) {
	out := FormatRequestList([]*domain.Request{sampleRequest(domain.RejectedBy(domain.RoleCommitteeMember))}, fmtNow)

	assert.Contains(t, out, "INV-0007")
	assert.Contains(t, out, "250000.00 USD")
	assert.Contains(t, out, "Committee rejected")
	assert.Contains(t, out, "2h ago")
}

func TestFormatRequestList_Empty(t *testing.T) {
	assert.Contains(t, FormatRequestList(nil, fmtNow), "No requests.")
}

func TestFormatRequestDetail_ShowsHistoryAndWaitingTasks(t *testing.T) {
	data := RequestDetailData{
		Request: sampleRequest(domain.StageApprovedBy(domain.RoleManager)),
		Investment: &domain.InvestmentRequest{
			ProjectName:   "Line 3 retrofit",
			HorizonMonths: 18,
		},
		Stages: []domain.WorkflowStageConfig{
			{StageNumber: 1, RequiredRole: domain.RoleManager, SLAHours: 48},
			{StageNumber: 2, RequiredRole: domain.RoleCommitteeMember, SLAHours: 72},
			{StageNumber: 3, RequiredRole: domain.RoleFinance, SLAHours: 24},
		},
		History: []*domain.ApprovalRecord{
			decidedRecord(1, 1, domain.ApprovalApproved, domain.RoleManager, "mgr-1"),
			decidedRecord(1, 2, domain.ApprovalPending, domain.RoleCommitteeMember, ""),
		},
		Tasks: []*domain.Task{
			{AssigneeID: "com-1", Status: domain.TaskPending, DueDate: fmtNow.Add(70 * time.Hour)},
			{AssigneeID: "mgr-1", Status: domain.TaskCompleted, DueDate: fmtNow},
		},
		Now: fmtNow,
	}

	out := FormatRequestDetail(data)

	assert.Contains(t, out, "INV-0007")
	assert.Contains(t, out, "Manager approved")
	assert.Contains(t, out, "Line 3 retrofit")
	assert.Contains(t, out, "18 months")
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "Cycle 1")
	assert.Contains(t, out, "by mgr-1")
	assert.Contains(t, out, "WAITING ON")
	assert.Contains(t, out, "com-1")
}

func TestFormatRequestDetail_NoWorkflow(t *testing.T) {
	out := FormatRequestDetail(RequestDetailData{
		Request: sampleRequest(domain.StatusDraft),
		Cash:    &domain.CashRequest{Purpose: "Booth deposit", Payee: "ExpoCo"},
		Stages:  []domain.WorkflowStageConfig{{StageNumber: 1, RequiredRole: domain.RoleManager, SLAHours: 24}},
		Now:     fmtNow,
	})

	assert.Contains(t, out, "Draft")
	assert.Contains(t, out, "Booth deposit")
	assert.Contains(t, out, "ExpoCo")
	assert.Contains(t, out, "No workflow started.")
}

func TestCurrentCycleProgress_ResetsOnNewCycle(t *testing.T) {
	history := []*domain.ApprovalRecord{
		decidedRecord(1, 1, domain.ApprovalApproved, domain.RoleManager, "mgr-1"),
		decidedRecord(1, 2, domain.ApprovalRejected, domain.RoleCommitteeMember, "com-1"),
		decidedRecord(2, 1, domain.ApprovalPending, domain.RoleManager, ""),
	}

	approved, cycle := currentCycleProgress(history)
	assert.Equal(t, 0, approved)
	assert.Equal(t, 2, cycle)
}

func TestHistoryTree_GroupsByCycle(t *testing.T) {
	rec := decidedRecord(1, 2, domain.ApprovalRejected, domain.RoleCommitteeMember, "com-1")
	rec.Comments = "needs ROI"
	// stored order: stage, then creation time
	history := []*domain.ApprovalRecord{
		decidedRecord(1, 1, domain.ApprovalApproved, domain.RoleManager, "mgr-1"),
		decidedRecord(2, 1, domain.ApprovalPending, domain.RoleManager, ""),
		rec,
	}

	items := HistoryTree(history)

	assert.Len(t, items, 5)
	assert.Contains(t, items[0].Title, "Cycle 1")
	assert.Equal(t, "done", items[1].Status)
	assert.False(t, items[1].IsLast)
	assert.Equal(t, "failed", items[2].Status)
	assert.True(t, items[2].IsLast)
	assert.Contains(t, items[2].Title, "Committee rejected")
	assert.Contains(t, items[2].Title, "needs ROI")
	assert.Contains(t, items[3].Title, "Cycle 2")
	assert.Equal(t, "active", items[4].Status)
	assert.Empty(t, items[4].Detail)

	out := FormatHistory("INV-0007", history)
	assert.Contains(t, out, "└─")
	assert.Contains(t, out, "├─")
}

func TestFormatHistory_Empty(t *testing.T) {
	assert.Contains(t, FormatHistory("CR-0001", nil), "No approval history for CR-0001.")
}
