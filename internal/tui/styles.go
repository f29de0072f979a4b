package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette vars are mutable: applyTheme repoints them when the theme
// changes, and the style vars below are rebuilt from them.

var (
	// Base tones
	colorBase     = lipgloss.Color("#1E1E2E")
	colorMantle   = lipgloss.Color("#181825")
	colorSurface0 = lipgloss.Color("#313244")
	colorSurface1 = lipgloss.Color("#45475A")
	colorText     = lipgloss.Color("#CDD6F4")
	colorSubtext  = lipgloss.Color("#A6ADC8")
	colorDim      = lipgloss.Color("#585B70")

	// Accents
	colorAccent   = lipgloss.Color("#CBA6F7")
	colorBlue     = lipgloss.Color("#89B4FA")
	colorSapphire = lipgloss.Color("#74C7EC")
	colorGreen    = lipgloss.Color("#A6E3A1")
	colorYellow   = lipgloss.Color("#F9E2AF")
	colorRed      = lipgloss.Color("#F38BA8")
	colorPeach    = lipgloss.Color("#FAB387")
	colorTeal     = lipgloss.Color("#94E2D5")
	colorLavender = lipgloss.Color("#B4BEFE")
)

var (
	headerStyle        lipgloss.Style
	headerBrandStyle   lipgloss.Style
	sectionHeaderStyle lipgloss.Style
	helpStyle          lipgloss.Style
	helpKeyStyle       lipgloss.Style
	labelStyle         lipgloss.Style
	valueStyle         lipgloss.Style
	dimStyle           lipgloss.Style
	selectedRowStyle   lipgloss.Style
	tableHeaderStyle   lipgloss.Style
	detailTitleStyle   lipgloss.Style
	detailCardStyle    lipgloss.Style
	heroValueStyle     lipgloss.Style
	chartTitleStyle    lipgloss.Style
	updateBannerStyle  lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	headerBrandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	helpStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpKeyStyle = lipgloss.NewStyle().Foreground(colorSapphire).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle = lipgloss.NewStyle().Foreground(colorText)
	dimStyle = lipgloss.NewStyle().Foreground(colorDim)
	selectedRowStyle = lipgloss.NewStyle().Background(colorSurface0)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext).Background(colorSurface0)
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	detailCardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSurface1).
		Padding(0, 1)
	heroValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	chartTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	updateBannerStyle = lipgloss.NewStyle().Foreground(colorMantle).Background(colorYellow).Padding(0, 1)
}

// RowState reflects where an account's refresh currently stands.
type RowState int

const (
	StateLoading RowState = iota // no data yet, first refresh running
	StateStale                   // painted from the history cache
	StateRefreshing
	StateOK
	StateError
)

func stateColor(s RowState) lipgloss.Color {
	switch s {
	case StateOK:
		return colorGreen
	case StateRefreshing:
		return colorSapphire
	case StateStale:
		return colorYellow
	case StateError:
		return colorRed
	default:
		return colorDim
	}
}

func stateIcon(s RowState) string {
	switch s {
	case StateOK:
		return "●"
	case StateRefreshing:
		return "◐"
	case StateStale:
		return "◌"
	case StateError:
		return "✗"
	default:
		return "·"
	}
}

// StateBadge returns a compact colored status label for table rows.
func StateBadge(s RowState) string {
	var text string
	switch s {
	case StateOK:
		text = "OK"
	case StateRefreshing:
		text = "SYNC"
	case StateStale:
		text = "STALE"
	case StateError:
		text = "ERR"
	default:
		text = "..."
	}
	return lipgloss.NewStyle().Bold(true).Foreground(stateColor(s)).Render(stateIcon(s) + " " + text)
}

// modelColorPalette cycles through colors for breakdown charts.
var modelColorPalette = []lipgloss.Color{
	colorPeach, colorTeal, colorSapphire, colorGreen,
	colorYellow, colorLavender, colorBlue, colorAccent,
}

// ModelColor returns a color for a model by its breakdown index.
func ModelColor(idx int) lipgloss.Color {
	if idx < 0 {
		idx = 0
	}
	return modelColorPalette[idx%len(modelColorPalette)]
}
