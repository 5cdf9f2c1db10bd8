package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderWorkBar renders worked against target like [██████░░] 75%, colored
// with the same scale as the month heat map. The bar saturates at 100%;
// the percentage does not.
func RenderWorkBar(worked, target, width int) string {
	if width < 2 {
		width = 2
	}
	ratio := 0.0
	if target > 0 {
		ratio = float64(worked) / float64(target)
	}
	filled := min(width, max(0, int(ratio*float64(width))))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := lipgloss.NewStyle().Foreground(CSSColor(accounting.ColorForRatio(ratio, false)))
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), ratio*100)
}
