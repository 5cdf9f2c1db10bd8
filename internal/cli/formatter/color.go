package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/punchclock/internal/domain"
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
	ColorInk    = lipgloss.Color("#1d2021")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatePill returns a colored indicator for the current work state.
func StatePill(state domain.WorkState) string {
	switch state {
	case domain.StateWorking:
		return StyleGreen.Render("● WORKING")
	case domain.StateBreak:
		return StyleYellow.Render("◐ BREAK")
	case domain.StateOff:
		return StyleDim.Render("○ OFF")
	default:
		return StyleDim.Render(string(state))
	}
}

// CSSColor converts "rgb(r g b)" into a lipgloss hex color. Anything else
// falls back to the dim color.
func CSSColor(css string) lipgloss.Color {
	var r, g, b int
	if _, err := fmt.Sscanf(css, "rgb(%d %d %d)", &r, &g, &b); err != nil {
		return ColorDim
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b)))
}

func clampByte(v int) int {
	return max(0, min(255, v))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
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
