package formatter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Status is rendered as a colored prefix: "done", "active" or "failed".
	Status string
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		statusPrefix := ""
		switch item.Status {
		case "done":
			statusPrefix = StyleGreen.Render("✔ ")
		case "active":
			statusPrefix = StyleYellowBold.Render("▶ ")
			title = StyleYellowBold.Render(title)
		case "failed":
			statusPrefix = StyleRed.Render("✖ ")
		case "returned":
			statusPrefix = StyleYellow.Render("↺ ")
		}

		content := prefix + statusPrefix + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}

// HistoryTree groups approval records by cycle, one branch per stage.
func HistoryTree(history []*domain.ApprovalRecord) []TreeItem {
	records := slices.Clone(history)
	slices.SortStableFunc(records, func(a, b *domain.ApprovalRecord) int {
		if c := cmp.Compare(a.Cycle, b.Cycle); c != 0 {
			return c
		}
		return cmp.Compare(a.Stage, b.Stage)
	})

	var items []TreeItem
	for i, rec := range records {
		if i == 0 || records[i-1].Cycle != rec.Cycle {
			items = append(items, TreeItem{Title: Bold(fmt.Sprintf("Cycle %d", rec.Cycle))})
		}
		last := i == len(records)-1 || records[i+1].Cycle != rec.Cycle

		title := fmt.Sprintf("Stage %d  %s", rec.Stage, rec.Label())
		if rec.ApproverID != nil {
			title += Dim(" by " + *rec.ApproverID)
		}
		if rec.Comments != "" {
			title += Dim(fmt.Sprintf(" %q", rec.Comments))
		}
		detail := ""
		if rec.ApprovedAt != nil {
			detail = rec.ApprovedAt.UTC().Format("2006-01-02 15:04")
		}
		items = append(items, TreeItem{
			Title:  title,
			Level:  1,
			IsLast: last,
			Status: approvalTreeStatus(rec.Status),
			Detail: detail,
		})
	}
	return items
}

func approvalTreeStatus(s domain.ApprovalStatus) string {
	switch s {
	case domain.ApprovalApproved:
		return "done"
	case domain.ApprovalPending:
		return "active"
	case domain.ApprovalRejected:
		return "failed"
	case domain.ApprovalChangesRequested:
		return "returned"
	}
	return ""
}
