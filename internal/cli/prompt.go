package cli

import (
	"fmt"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// tollgateHuhTheme returns a huh theme matching the formatter palette.
func tollgateHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// decisionForm asks for an action and optional comments on one pending stage.
func decisionForm(code string, pending *domain.ApprovalRecord, action, comments *string) *huh.Form {
	title := fmt.Sprintf("Decision for %s", code)
	if pending != nil {
		title = fmt.Sprintf("Decision for %s, stage %d (%s)", code, pending.Stage, pending.ApproverRole)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(
					huh.NewOption("Approve", string(domain.ActionApprove)),
					huh.NewOption("Reject", string(domain.ActionReject)),
					huh.NewOption("Request changes", string(domain.ActionChangesRequested)),
				).
				Value(action),
			huh.NewText().
				Title("Comments").
				Value(comments),
		),
	).WithTheme(tollgateHuhTheme()).WithShowHelp(false)
}

// pendingRecord returns the open record of a history, or nil.
func pendingRecord(history []*domain.ApprovalRecord) *domain.ApprovalRecord {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsPending() {
			return history[i]
		}
	}
	return nil
}
