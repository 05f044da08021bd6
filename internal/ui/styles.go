package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	ColorGreen  color.Color
	ColorRed    color.Color
	ColorYellow color.Color
	ColorDim    color.Color
	ColorWhite  color.Color
	ColorBorder color.Color
	ColorAccent color.Color
	ColorHeader color.Color

	StyleHeader  lipgloss.Style
	StyleActive  lipgloss.Style
	StyleDim     lipgloss.Style
	StyleAccent  lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarn    lipgloss.Style
	StyleLabel   lipgloss.Style
	StylePanel   lipgloss.Style
	StyleFocused lipgloss.Style

	StylePreviewBorder lipgloss.Style
)

func init() {
	Apply(T)
}

// Apply makes t the active theme and rebuilds the shared styles.
func Apply(t Theme) {
	T = t

	ColorGreen = lipgloss.Color(t.Green)
	ColorRed = lipgloss.Color(t.Red)
	ColorYellow = lipgloss.Color(t.Yellow)
	ColorDim = lipgloss.Color(t.Dim)
	ColorWhite = lipgloss.Color(t.Foreground)
	ColorBorder = lipgloss.Color(t.Border)
	ColorAccent = lipgloss.Color(t.Accent)
	ColorHeader = lipgloss.Color(t.BrightWhite)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		Background(ColorAccent)

	StyleActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorGreen)

	StyleDim = lipgloss.NewStyle().
		Foreground(ColorDim)

	StyleAccent = lipgloss.NewStyle().
		Foreground(ColorAccent)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorRed)

	StyleWarn = lipgloss.NewStyle().
		Foreground(ColorYellow)

	StyleLabel = lipgloss.NewStyle().
		Foreground(ColorDim).
		Width(10)

	StylePanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		PaddingLeft(1).
		PaddingRight(1)

	StyleFocused = StylePanel.
		BorderForeground(ColorAccent)

	StylePreviewBorder = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorBorder).
		PaddingLeft(1)
}

// Panel returns the bordered panel style, highlighted when focused.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return StyleFocused
	}
	return StylePanel
}

// Truncate shortens s to max runes, ending in an ellipsis when cut.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
