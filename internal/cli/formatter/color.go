package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusColor returns the style for a request status outcome.
func StatusColor(status domain.RequestStatus) lipgloss.Style {
	switch status.Outcome {
	case domain.OutcomeApproved:
		return StyleGreen
	case domain.OutcomeRejected:
		return StyleRed
	case domain.OutcomeChangesRequested:
		return StyleYellow
	case domain.OutcomeInProgress:
		return StyleBlue
	default:
		return StyleDim
	}
}

// RequestStatusPill renders the status label with an outcome marker, e.g.
// "✖ Committee rejected".
func RequestStatusPill(status domain.RequestStatus) string {
	var marker string
	switch status.Outcome {
	case domain.OutcomeApproved:
		marker = "✔"
	case domain.OutcomeRejected:
		marker = "✖"
	case domain.OutcomeChangesRequested:
		marker = "↺"
	case domain.OutcomeInProgress:
		marker = "▶"
	default:
		marker = "○"
	}
	return StatusColor(status).Render(marker + " " + status.String())
}

// TaskStatusPill returns a colored indicator for a task status.
func TaskStatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskPending:
		return StyleBlue.Render("○ Pending")
	case domain.TaskOverdue:
		return StyleRed.Render("● Overdue")
	case domain.TaskCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.TaskSuperseded:
		return StyleDim.Render("⊘ Superseded")
	default:
		return StyleDim.Render(string(status))
	}
}

// ApprovalPill renders an approval record's label.
func ApprovalPill(rec *domain.ApprovalRecord) string {
	label := rec.Label()
	switch rec.Status {
	case domain.ApprovalPending:
		return StyleYellowBold.Render("▶ " + label)
	case domain.ApprovalApproved:
		return StyleGreen.Render("✔ " + label)
	case domain.ApprovalRejected:
		return StyleRed.Render("✖ " + label)
	case domain.ApprovalChangesRequested:
		return StyleYellow.Render("↺ " + label)
	default:
		return StyleDim.Render(label)
	}
}

// RoleBadge returns a purple role label; an empty role renders as "--".
func RoleBadge(role domain.Role) string {
	if role == "" {
		return StyleDim.Render("--")
	}
	return StylePurple.Render(string(role))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
