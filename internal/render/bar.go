package render

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Bar renders a meter width cells wide, filled to fraction (clamped to 0..1).
func Bar(fraction float64, width int, fill lipgloss.Style) string {
	width = max(width, 4)
	filled := int(float64(width) * min(max(fraction, 0), 1))
	track := lipgloss.NewStyle().Background(Track)
	return fill.Render(strings.Repeat(" ", filled)) + track.Render(strings.Repeat(" ", width-filled))
}
