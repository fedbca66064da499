package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueIn renders the time left until due at hour granularity, e.g. "in 5h",
// "3h late". Beyond two days it falls back to RelativeDateFrom.
func DueIn(due, now time.Time) string {
	diff := due.Sub(now)
	hours := int(math.Round(diff.Hours()))
	switch {
	case hours > 48 || hours < -48:
		return RelativeDateFrom(due, now)
	case hours > 0:
		return fmt.Sprintf("in %dh", hours)
	case hours < 0:
		return fmt.Sprintf("%dh late", -hours)
	default:
		return "now"
	}
}

// DueInStyled colors DueIn by urgency: red when late or within 4h,
// yellow within a day.
func DueInStyled(due, now time.Time) string {
	text := DueIn(due, now)
	left := due.Sub(now)
	switch {
	case left <= 4*time.Hour:
		return StyleRed.Render(text)
	case left <= 24*time.Hour:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// HumanDate returns a human-friendly absolute date string relative to now.
func HumanDate(t, now time.Time) string {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return HumanDate(t, now)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return HumanDate(t, now)
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatAmount renders an amount with two decimals and its currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

// FormatSLA converts stage SLA hours into "2d", "1d 12h" or "12h".
func FormatSLA(hours int) string {
	if hours <= 0 {
		return "0h"
	}
	d := hours / 24
	h := hours % 24
	if d > 0 && h > 0 {
		return fmt.Sprintf("%dd %dh", d, h)
	}
	if d > 0 {
		return fmt.Sprintf("%dd", d)
	}
	return fmt.Sprintf("%dh", h)
}
