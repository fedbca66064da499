package formatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/service"
)

// FormatStages renders the configured stage sequence of one kind.
func FormatStages(kind domain.RequestKind, stages []domain.WorkflowStageConfig) string {
	headers := []string{"STAGE", "ROLE", "SLA"}
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.StageNumber),
			RoleBadge(s.RequiredRole),
			FormatSLA(s.SLAHours),
		})
	}
	return RenderBox(string(kind), RenderTable(headers, rows))
}

// FormatStageOpened reports a freshly opened stage and who it fanned out to.
func FormatStageOpened(code string, opened *service.StageOpened, now time.Time) string {
	if opened == nil || opened.Record == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s stage %d (cycle %d) open for %s\n",
		StyleGreen.Render("▶"),
		Bold(code),
		opened.Record.Stage,
		opened.Record.Cycle,
		RoleBadge(opened.Record.ApproverRole),
	))
	if errors.Is(opened.Warning, domain.ErrZeroEligibleApprovers) {
		b.WriteString(StyleRed.Render("  ! no eligible approvers, operator alerted") + "\n")
		return b.String()
	}
	for _, t := range opened.Tasks {
		b.WriteString(fmt.Sprintf("  %s %s  %s\n", Dim("→"), t.AssigneeID, Dim("due "+DueIn(t.DueDate, now))))
	}
	return b.String()
}

// FormatDecision reports the outcome of a processed decision.
func FormatDecision(code string, result *service.DecisionResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold(code), result.Message))
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("STATUS"), RequestStatusPill(result.Status)))
	if result.NextStage != nil {
		b.WriteString(FormatStageOpened(code, result.NextStage, now))
	}
	return b.String()
}

// FormatRoles renders the role directory.
func FormatRoles(assignments []domain.RoleAssignment, now time.Time) string {
	if len(assignments) == 0 {
		return Dim("No role assignments.") + "\n"
	}
	headers := []string{"USER", "ROLE", "SINCE"}
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{a.UserID, RoleBadge(a.Role), HumanDate(a.CreatedAt, now)})
	}
	return RenderBox("Roles", RenderTable(headers, rows))
}
