package render

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary = lipgloss.Color("#8B5CF6")
	Teal    = lipgloss.Color("#14B8A6")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Rose    = lipgloss.Color("#F43F5E")
	Dim     = lipgloss.Color("#94A3B8")
	Track   = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(Dim)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Track).
			Padding(0, 1)

	overdueStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)
)

// masteryColor picks the bar color for a 0..100 score.
func masteryColor(score float64) lipgloss.Style {
	switch {
	case score < 30:
		return lipgloss.NewStyle().Background(Rose)
	case score < 70:
		return lipgloss.NewStyle().Background(Amber)
	default:
		return lipgloss.NewStyle().Background(Green)
	}
}
