package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/usagetop/usagetop/internal/core"
)

const (
	colAccountWidth = 18
	colStateWidth   = 9
	colGaugeWidth   = 16
	minTableWidth   = 72
)

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var sections []string
	sections = append(sections, m.viewHeader())
	if len(m.accounts) == 0 {
		sections = append(sections, "", dimStyle.Render("  no accounts configured; add one to settings.json"))
	} else {
		sections = append(sections, m.viewTable(), m.viewDetail())
	}
	sections = append(sections, m.viewFooter())

	return strings.Join(sections, "\n")
}

func (m Model) viewHeader() string {
	brand := headerBrandStyle.Render("usagetop")
	theme := dimStyle.Render(ThemeName())

	left := brand + "  " + theme
	if m.updateVersion != "" {
		banner := updateBannerStyle.Render(fmt.Sprintf("⬆ %s available: %s", m.updateVersion, m.updateHint))
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(banner)
		if gap > 1 {
			return left + strings.Repeat(" ", gap) + banner
		}
	}
	return left
}

func (m Model) viewTable() string {
	header := fmt.Sprintf(" %-*s %-*s %-*s %8s %10s %7s  %s",
		colAccountWidth, "ACCOUNT",
		colStateWidth, "STATUS",
		colGaugeWidth, "USED",
		"REQS", "COST", "MONTHS", "UPDATED")
	lines := []string{tableHeaderStyle.Width(max(m.width, minTableWidth)).Render(header)}

	for i, acct := range m.accounts {
		lines = append(lines, m.viewRow(i, acct))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRow(idx int, acct core.AccountConfig) string {
	row := m.rows[acct.ID]

	name := acct.ID
	if len(name) > colAccountWidth {
		name = name[:colAccountWidth-1] + "…"
	}

	gauge := RenderMiniGauge(m.usedPercent(acct, row), colGaugeWidth)
	updated := "—"
	if row != nil && !row.updatedAt.IsZero() {
		updated = relativeTime(time.Since(row.updatedAt))
	}

	state := StateLoading
	var reqs, cost, months string
	if row != nil {
		state = row.state
		reqs = FormatCount(row.result.Used)
		cost = fmt.Sprintf("$%.2f", row.result.Cost)
		months = fmt.Sprintf("%d", row.result.FetchedMonths)
	}

	line := fmt.Sprintf(" %-*s %-*s %s %8s %10s %7s  %s",
		colAccountWidth, name,
		colStateWidth+badgePadding(state), StateBadge(state),
		gauge, reqs, cost, months, dimStyle.Render(updated))

	if idx == m.cursor {
		return selectedRowStyle.Width(max(m.width, minTableWidth)).Render(line)
	}
	return line
}

// badgePadding compensates for the ANSI escape bytes StateBadge adds,
// so %-*s alignment stays visually stable.
func badgePadding(s RowState) int {
	return lipgloss.Width(StateBadge(s)) - len(stateText(s))
}

func stateText(s RowState) string {
	switch s {
	case StateOK:
		return "● OK"
	case StateRefreshing:
		return "◐ SYNC"
	case StateStale:
		return "◌ STALE"
	case StateError:
		return "✗ ERR"
	default:
		return "· ..."
	}
}

func (m Model) usedPercent(acct core.AccountConfig, row *accountRow) float64 {
	if row == nil || acct.MonthlyLimit <= 0 {
		return -1
	}
	return row.result.Used / acct.MonthlyLimit * 100
}

func (m Model) viewDetail() string {
	acct, ok := m.selectedAccount()
	if !ok {
		return ""
	}
	row := m.rows[acct.ID]
	if row == nil {
		return ""
	}

	innerWidth := max(m.width, minTableWidth) - 4

	var sb strings.Builder
	sb.WriteString(detailTitleStyle.Render(acct.ID))
	sb.WriteString(dimStyle.Render("  " + acct.Provider))
	if acct.Identity != "" {
		sb.WriteString(dimStyle.Render("  " + acct.Identity))
	}
	sb.WriteString("\n\n")

	if row.state == StateError && row.err != nil {
		sb.WriteString(lipgloss.NewStyle().Foreground(colorRed).Render(row.err.Error()))
		return detailCardStyle.Width(innerWidth + 2).Render(sb.String())
	}

	sb.WriteString(heroValueStyle.Render(FormatCount(row.result.Used)))
	sb.WriteString(labelStyle.Render(" requests this month   "))
	sb.WriteString(heroValueStyle.Render(fmt.Sprintf("$%.2f", row.result.Cost)))
	sb.WriteString(labelStyle.Render(" billed"))
	sb.WriteString("\n")

	if acct.MonthlyLimit > 0 {
		sb.WriteString(RenderUsageGauge(m.usedPercent(acct, row), innerWidth-10, m.warnThreshold, m.critThreshold))
		sb.WriteString("\n")
	}

	if len(row.result.Breakdown) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sectionHeaderStyle.Render("Models"))
		sb.WriteString("\n")
		sb.WriteString(RenderBreakdown(row.result.Breakdown, innerWidth))
		sb.WriteString("\n")
	}

	months := MonthsWithData(row.result.Daily)
	if len(months) > 0 {
		offset := m.monthOffset
		if offset >= len(months) {
			offset = len(months) - 1
		}
		sb.WriteString("\n")
		sb.WriteString(sectionHeaderStyle.Render("Daily"))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d  (h/l to scroll)", offset+1, len(months))))
		sb.WriteString("\n")
		sb.WriteString(RenderDailyChart(row.result.Daily, months[offset], innerWidth))
	}

	return detailCardStyle.Width(innerWidth + 2).Render(sb.String())
}

func (m Model) viewFooter() string {
	if m.showHelp {
		return m.viewHelp()
	}
	keys := []struct{ key, label string }{
		{"j/k", "select"},
		{"h/l", "month"},
		{"r", "refresh"},
		{"R", "refresh all"},
		{"t", "theme"},
		{"?", "help"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+helpStyle.Render(" "+k.label))
	}
	return " " + strings.Join(parts, helpStyle.Render("  ·  "))
}

func (m Model) viewHelp() string {
	lines := []string{
		sectionHeaderStyle.Render(" Keys"),
		helpKeyStyle.Render("  j/k, ↑/↓") + helpStyle.Render("   move between accounts"),
		helpKeyStyle.Render("  h/l, ←/→") + helpStyle.Render("   scroll the daily chart through older months"),
		helpKeyStyle.Render("  r") + helpStyle.Render("           refresh the selected account"),
		helpKeyStyle.Render("  R") + helpStyle.Render("           refresh every account"),
		helpKeyStyle.Render("  t") + helpStyle.Render("           cycle themes (persisted)"),
		helpKeyStyle.Render("  q") + helpStyle.Render("           quit"),
	}
	return strings.Join(lines, "\n")
}

func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
