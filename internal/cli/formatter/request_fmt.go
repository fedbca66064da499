package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RequestDetailData holds everything the request card shows. Investment or
// Cash carries the kind-specific fields; both may be nil.
type RequestDetailData struct {
	Request    *domain.Request
	Investment *domain.InvestmentRequest
	Cash       *domain.CashRequest
	Stages     []domain.WorkflowStageConfig
	History    []*domain.ApprovalRecord
	Tasks      []*domain.Task
	Now        time.Time
}

// FormatRequestList renders requests as a table inside a bordered box.
func FormatRequestList(requests []*domain.Request, now time.Time) string {
	if len(requests) == 0 {
		return Dim("No requests.") + "\n"
	}
	headers := []string{"CODE", "KIND", "REQUESTER", "AMOUNT", "STATUS", "UPDATED"}
	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{
			Bold(r.DisplayCode()),
			Dim(string(r.Kind)),
			r.RequesterID,
			FormatAmount(r.Amount, r.Currency),
			RequestStatusPill(r.Status),
			HumanTimestamp(r.UpdatedAt, now),
		})
	}
	return RenderBox("Requests", RenderTable(headers, rows))
}

// FormatRequestDetail renders the metadata panel next to the approval history.
func FormatRequestDetail(data RequestDetailData) string {
	left := requestMetadataPanel(data)
	right := historyPanel(data)
	return RenderBox("", lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right))
}

func requestMetadataPanel(data RequestDetailData) string {
	r := data.Request
	var b strings.Builder

	b.WriteString(StyleBold.Render(r.DisplayCode()) + "  " + Dim(r.Kind.DisplayName()) + "\n\n")
	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render(fmt.Sprintf("%-9s", label)), value))
	}
	field("STATUS", RequestStatusPill(r.Status))
	field("REQUESTER", r.RequesterID)
	field("AMOUNT", StyleFg.Render(FormatAmount(r.Amount, r.Currency)))
	field("ID", TruncID(r.ID))
	field("CREATED", HumanDate(r.CreatedAt, data.Now))

	if inv := data.Investment; inv != nil {
		b.WriteString("\n")
		field("PROJECT", inv.ProjectName)
		if inv.Category != "" {
			field("CATEGORY", inv.Category)
		}
		if inv.HorizonMonths > 0 {
			field("HORIZON", fmt.Sprintf("%d months", inv.HorizonMonths))
		}
		if inv.Description != "" {
			field("DETAILS", Dim(inv.Description))
		}
	}
	if cr := data.Cash; cr != nil {
		b.WriteString("\n")
		field("PURPOSE", cr.Purpose)
		if cr.Payee != "" {
			field("PAYEE", cr.Payee)
		}
		if cr.NeededBy != nil {
			field("NEEDED", RelativeDateFrom(*cr.NeededBy, data.Now))
		}
	}
	return b.String()
}

func historyPanel(data RequestDetailData) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("APPROVALS") + "\n")

	approved, cycle := currentCycleProgress(data.History)
	rejected := data.Request.Status.IsRejected()
	b.WriteString(RenderStageProgress(approved, len(data.Stages), 12, rejected))
	if cycle > 0 {
		b.WriteString(Dim(fmt.Sprintf("  cycle %d", cycle)))
	}
	b.WriteString("\n\n")

	if len(data.History) == 0 {
		b.WriteString(Dim("No workflow started.") + "\n")
	} else {
		b.WriteString(RenderTree(HistoryTree(data.History)))
	}

	open := openTasks(data.Tasks)
	if len(open) > 0 {
		b.WriteString("\n" + StyleHeader.Render("WAITING ON") + "\n")
		for _, t := range open {
			b.WriteString(fmt.Sprintf("%s  %s  %s\n", t.AssigneeID, TaskStatusPill(t.Status), DueInStyled(t.DueDate, data.Now)))
		}
	}
	return b.String()
}

// currentCycleProgress counts approved stages in the latest cycle.
func currentCycleProgress(history []*domain.ApprovalRecord) (approved, cycle int) {
	for _, rec := range history {
		if rec.Cycle > cycle {
			cycle = rec.Cycle
			approved = 0
		}
		if rec.Cycle == cycle && rec.Status == domain.ApprovalApproved {
			approved++
		}
	}
	return approved, cycle
}

func openTasks(tasks []*domain.Task) []*domain.Task {
	var out []*domain.Task
	for _, t := range tasks {
		if t.Actionable() {
			out = append(out, t)
		}
	}
	return out
}

// FormatHistory renders the approval history tree on its own.
func FormatHistory(code string, history []*domain.ApprovalRecord) string {
	if len(history) == 0 {
		return Dim(fmt.Sprintf("No approval history for %s.", code)) + "\n"
	}
	return RenderBox("History "+code, strings.TrimRight(RenderTree(HistoryTree(history)), "\n"))
}
