package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/service"
)

// FormatTaskList renders a user's approval tasks.
func FormatTaskList(userID string, tasks []*domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return Dim(fmt.Sprintf("No tasks for %s.", userID)) + "\n"
	}
	headers := []string{"TASK", "TITLE", "STAGE", "STATUS", "DUE"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := Dim("--")
		if t.Actionable() {
			due = DueInStyled(t.DueDate, now)
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			t.Title,
			fmt.Sprintf("%d", t.Stage),
			TaskStatusPill(t.Status),
			due,
		})
	}
	return RenderBox("Tasks "+userID, RenderTable(headers, rows))
}

// FormatSweep summarizes an SLA sweep.
func FormatSweep(result *service.SweepResult) string {
	if len(result.Overdue) == 0 {
		return fmt.Sprintf("%s checked %d past-due task(s), none newly overdue\n", StyleGreen.Render("✔"), result.Checked)
	}
	out := fmt.Sprintf("%s %d task(s) newly overdue\n", StyleRed.Render("●"), len(result.Overdue))
	for _, t := range result.Overdue {
		out += fmt.Sprintf("  %s %s  %s\n", Dim("→"), t.AssigneeID, t.Title)
	}
	return out
}
