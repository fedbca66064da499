package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderStageProgress renders how far a cycle has advanced, like
// [██████░░░] 2/3. Rejected cycles render red.
func RenderStageProgress(approved, total, width int, rejected bool) string {
	if total <= 0 {
		return Dim("[no stages]")
	}
	if approved < 0 {
		approved = 0
	}
	if approved > total {
		approved = total
	}
	if width < total {
		width = total
	}

	filled := approved * width / total
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleBlue
	switch {
	case rejected:
		style = StyleRed
	case approved == total:
		style = StyleGreen
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), approved, total)
}
