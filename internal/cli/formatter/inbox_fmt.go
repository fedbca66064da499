package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// FormatInbox renders stored notifications in the order given.
func FormatInbox(userID string, notes []*domain.Notification, now time.Time) string {
	label := userID
	if label == "" {
		label = "broadcast"
	}
	if len(notes) == 0 {
		return Dim(fmt.Sprintf("Inbox for %s is empty.", label)) + "\n"
	}

	var b strings.Builder
	for i, n := range notes {
		marker := StyleYellowBold.Render("●")
		title := Bold(n.Title)
		if n.ReadAt != nil {
			marker = Dim("○")
			title = Dim(n.Title)
		}
		b.WriteString(fmt.Sprintf("%s %s  %s  %s\n", marker, title, notificationBadge(n.Kind), Dim(HumanTimestamp(n.CreatedAt, now))))
		if n.Message != "" {
			b.WriteString("  " + n.Message + "\n")
		}
		b.WriteString("  " + Dim(n.ID) + "\n")
		if i < len(notes)-1 {
			b.WriteString("\n")
		}
	}
	return RenderBox("Inbox "+label, strings.TrimRight(b.String(), "\n"))
}

func notificationBadge(kind domain.NotificationKind) string {
	switch kind {
	case domain.NotifyRequestApproved:
		return StyleGreen.Render(string(kind))
	case domain.NotifyRequestRejected, domain.NotifyOperatorAlert, domain.NotifyTaskOverdue:
		return StyleRed.Render(string(kind))
	case domain.NotifyChangesRequested:
		return StyleYellow.Render(string(kind))
	default:
		return StyleBlue.Render(string(kind))
	}
}
