package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/usagetop/usagetop/internal/core"
)

const (
	dailyChartHeight = 6
	dailyBarWidth    = 2
	dailyBarGap      = 1
)

// MonthsWithData lists the distinct "YYYY-MM" prefixes present in the
// daily series, newest first, for scrolling through history.
func MonthsWithData(daily []core.DailyPoint) []string {
	months := lo.Uniq(lo.FilterMap(daily, func(p core.DailyPoint, _ int) (string, bool) {
		if len(p.Day) < 7 {
			return "", false
		}
		return p.Day[:7], true
	}))
	// Daily is sorted ascending; reverse so the current month comes first.
	return lo.Reverse(months)
}

// RenderDailyChart draws one month of the daily series as a bar chart
// with day-of-month labels.
func RenderDailyChart(daily []core.DailyPoint, month string, width int) string {
	points := lo.Filter(daily, func(p core.DailyPoint, _ int) bool {
		return strings.HasPrefix(p.Day, month+"-")
	})
	if len(points) == 0 {
		return dimStyle.Render("no usage recorded for " + month)
	}

	maxUsed := lo.MaxBy(points, func(a, b core.DailyPoint) bool { return a.Used > b.Used }).Used
	if maxUsed == 0 {
		maxUsed = 1
	}
	totalUsed := lo.SumBy(points, func(p core.DailyPoint) float64 { return p.Used })
	totalCost := lo.SumBy(points, func(p core.DailyPoint) float64 { return p.Cost })

	var sb strings.Builder
	sb.WriteString(chartTitleStyle.Render(month))
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %s requests  $%.2f", FormatCount(totalUsed), totalCost)))
	sb.WriteString("\n")

	axisStyle := lipgloss.NewStyle().Foreground(colorDim)
	chartLabelStyle := lipgloss.NewStyle().Foreground(colorSubtext)
	chart := barchart.New(width, dailyChartHeight,
		barchart.WithStyles(axisStyle, chartLabelStyle),
	)
	chart.SetBarWidth(dailyBarWidth)
	chart.SetBarGap(dailyBarGap)
	chart.SetMax(maxUsed)

	barStyle := lipgloss.NewStyle().Foreground(colorSapphire)
	for _, p := range points {
		chart.Push(barchart.BarData{
			Label: p.Day[8:],
			Values: []barchart.BarValue{
				{Name: "used", Value: p.Used, Style: barStyle},
			},
		})
	}

	chart.Draw()
	sb.WriteString(chart.View())
	return sb.String()
}

// RenderBreakdown draws the per-model distribution as horizontal bars
// scaled against the largest entry.
func RenderBreakdown(breakdown []core.ModelBreakdown, width int) string {
	if len(breakdown) == 0 {
		return dimStyle.Render("no model breakdown")
	}

	labelWidth := lo.Max(lo.Map(breakdown, func(b core.ModelBreakdown, _ int) int { return len(b.Label) }))
	if labelWidth > 24 {
		labelWidth = 24
	}
	barWidth := width - labelWidth - 20
	if barWidth < 8 {
		barWidth = 8
	}

	maxUsed := breakdown[0].Used // sorted descending by Used
	if maxUsed == 0 {
		maxUsed = 1
	}

	var lines []string
	for i, b := range breakdown {
		label := b.Label
		if len(label) > labelWidth {
			label = label[:labelWidth-1] + "…"
		}
		filled := int(b.Used / maxUsed * float64(barWidth))
		bar := lipgloss.NewStyle().Foreground(ModelColor(i)).Render(strings.Repeat("▇", filled)) +
			lipgloss.NewStyle().Foreground(colorSurface0).Render(strings.Repeat("▁", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)), bar,
			valueStyle.Render(fmt.Sprintf("%s  $%.2f", FormatCount(b.Used), b.Cost))))
	}
	return strings.Join(lines, "\n")
}

// FormatCount renders a request count with K/M suffixes.
func FormatCount(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%.0fK", n/1_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}
