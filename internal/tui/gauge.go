package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderUsageGauge produces a text-based gauge filling left to right
// as usage grows (0=empty, 100=full). Thresholds are "remaining"
// fractions, so crit at 0.05 means the bar turns red at 95% used.
func RenderUsageGauge(usedPercent float64, width int, warnThresh, critThresh float64) string {
	if width < 5 {
		width = 5
	}

	if usedPercent < 0 {
		return dimStyle.Render(strings.Repeat("─", width)) + dimStyle.Render("   N/A")
	}
	clamped := usedPercent
	if clamped > 100 {
		clamped = 100
	}

	filled := int(clamped / 100 * float64(width))
	empty := width - filled

	var color lipgloss.Color
	switch {
	case clamped >= (1-critThresh)*100:
		color = colorRed
	case clamped >= (1-warnThresh)*100:
		color = colorYellow
	default:
		color = colorGreen
	}

	filledStyle := lipgloss.NewStyle().Foreground(color)
	trackStyle := lipgloss.NewStyle().Foreground(colorSurface1)

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("━", empty))

	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return fmt.Sprintf("%s %s", bar, pctStyle.Render(fmt.Sprintf("%5.1f%%", usedPercent)))
}

// RenderMiniGauge produces a compact inline gauge with no label, for
// table rows.
func RenderMiniGauge(usedPercent float64, width int) string {
	if width < 3 {
		width = 3
	}
	if usedPercent < 0 {
		return lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("━", width))
	}
	if usedPercent > 100 {
		usedPercent = 100
	}

	filled := int(usedPercent / 100 * float64(width))
	empty := width - filled

	var color lipgloss.Color
	switch {
	case usedPercent >= 95:
		color = colorRed
	case usedPercent >= 80:
		color = colorYellow
	default:
		color = colorGreen
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("━", empty))
}
