package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// USAGETOP_THEME_DIR can point to one or more additional theme
// directories (path-list separated, e.g. ":" on unix).
const themeDirEnvVar = "USAGETOP_THEME_DIR"

// Theme is the visual token set used by the TUI. External themes can
// be dropped into <configDir>/themes as JSON files with matching
// snake_case fields.
type Theme struct {
	Name string `json:"name"`
	Icon string `json:"icon"`

	Base     lipgloss.Color `json:"base"`
	Mantle   lipgloss.Color `json:"mantle"`
	Surface0 lipgloss.Color `json:"surface0"`
	Surface1 lipgloss.Color `json:"surface1"`

	Text    lipgloss.Color `json:"text"`
	Subtext lipgloss.Color `json:"subtext"`
	Dim     lipgloss.Color `json:"dim"`

	Accent   lipgloss.Color `json:"accent"`
	Blue     lipgloss.Color `json:"blue"`
	Sapphire lipgloss.Color `json:"sapphire"`
	Green    lipgloss.Color `json:"green"`
	Yellow   lipgloss.Color `json:"yellow"`
	Red      lipgloss.Color `json:"red"`
	Peach    lipgloss.Color `json:"peach"`
	Teal     lipgloss.Color `json:"teal"`
	Lavender lipgloss.Color `json:"lavender"`
}

var (
	themeMu        sync.RWMutex
	themes         []Theme
	activeThemeIdx int
)

func init() {
	themes = builtinThemes()
	applyTheme(themes[activeThemeIdx])
}

func builtinThemes() []Theme {
	return []Theme{
		{
			Name: "Catppuccin Mocha", Icon: "🐱",
			Base: "#1E1E2E", Mantle: "#181825",
			Surface0: "#313244", Surface1: "#45475A",
			Text: "#CDD6F4", Subtext: "#A6ADC8", Dim: "#585B70",
			Accent: "#CBA6F7", Blue: "#89B4FA", Sapphire: "#74C7EC",
			Green: "#A6E3A1", Yellow: "#F9E2AF", Red: "#F38BA8",
			Peach: "#FAB387", Teal: "#94E2D5", Lavender: "#B4BEFE",
		},
		{
			Name: "Gruvbox", Icon: "🌻",
			Base: "#282828", Mantle: "#1D2021",
			Surface0: "#3C3836", Surface1: "#504945",
			Text: "#EBDBB2", Subtext: "#D5C4A1", Dim: "#665C54",
			Accent: "#D3869B", Blue: "#83A598", Sapphire: "#83A598",
			Green: "#B8BB26", Yellow: "#FABD2F", Red: "#FB4934",
			Peach: "#FE8019", Teal: "#8EC07C", Lavender: "#D3869B",
		},
		{
			Name: "Dracula", Icon: "🧛",
			Base: "#282A36", Mantle: "#21222C",
			Surface0: "#44475A", Surface1: "#6272A4",
			Text: "#F8F8F2", Subtext: "#BFBFBF", Dim: "#6272A4",
			Accent: "#BD93F9", Blue: "#8BE9FD", Sapphire: "#8BE9FD",
			Green: "#50FA7B", Yellow: "#F1FA8C", Red: "#FF5555",
			Peach: "#FFB86C", Teal: "#8BE9FD", Lavender: "#BD93F9",
		},
		{
			Name: "Nord", Icon: "❄",
			Base: "#2E3440", Mantle: "#242933",
			Surface0: "#3B4252", Surface1: "#434C5E",
			Text: "#ECEFF4", Subtext: "#D8DEE9", Dim: "#4C566A",
			Accent: "#B48EAD", Blue: "#81A1C1", Sapphire: "#88C0D0",
			Green: "#A3BE8C", Yellow: "#EBCB8B", Red: "#BF616A",
			Peach: "#D08770", Teal: "#8FBCBB", Lavender: "#B48EAD",
		},
		{
			Name: "Tokyo Night", Icon: "🌃",
			Base: "#1A1B26", Mantle: "#16161E",
			Surface0: "#24283B", Surface1: "#414868",
			Text: "#C0CAF5", Subtext: "#A9B1D6", Dim: "#565F89",
			Accent: "#BB9AF7", Blue: "#7AA2F7", Sapphire: "#7DCFFF",
			Green: "#9ECE6A", Yellow: "#E0AF68", Red: "#F7768E",
			Peach: "#FF9E64", Teal: "#73DACA", Lavender: "#BB9AF7",
		},
		{
			Name: "Grayscale", Icon: "⬛",
			Base: "#000000", Mantle: "#0A0A0A",
			Surface0: "#181818", Surface1: "#2A2A2A",
			Text: "#F5F5F5", Subtext: "#D6D6D6", Dim: "#A8A8A8",
			Accent: "#FFFFFF", Blue: "#E8E8E8", Sapphire: "#DDDDDD",
			Green: "#D0D0D0", Yellow: "#BEBEBE", Red: "#AAAAAA",
			Peach: "#ECECEC", Teal: "#CCCCCC", Lavender: "#D9D9D9",
		},
	}
}

func applyTheme(t Theme) {
	colorBase = t.Base
	colorMantle = t.Mantle
	colorSurface0 = t.Surface0
	colorSurface1 = t.Surface1
	colorText = t.Text
	colorSubtext = t.Subtext
	colorDim = t.Dim
	colorAccent = t.Accent
	colorBlue = t.Blue
	colorSapphire = t.Sapphire
	colorGreen = t.Green
	colorYellow = t.Yellow
	colorRed = t.Red
	colorPeach = t.Peach
	colorTeal = t.Teal
	colorLavender = t.Lavender
	rebuildStyles()
}

func trimColor(c lipgloss.Color) lipgloss.Color {
	return lipgloss.Color(strings.TrimSpace(string(c)))
}

func normalizeTheme(in Theme) Theme {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	if in.Icon == "" {
		in.Icon = "🎨"
	}

	in.Base = trimColor(in.Base)
	in.Mantle = trimColor(in.Mantle)
	in.Surface0 = trimColor(in.Surface0)
	in.Surface1 = trimColor(in.Surface1)
	in.Text = trimColor(in.Text)
	in.Subtext = trimColor(in.Subtext)
	in.Dim = trimColor(in.Dim)
	in.Accent = trimColor(in.Accent)
	in.Blue = trimColor(in.Blue)
	in.Sapphire = trimColor(in.Sapphire)
	in.Green = trimColor(in.Green)
	in.Yellow = trimColor(in.Yellow)
	in.Red = trimColor(in.Red)
	in.Peach = trimColor(in.Peach)
	in.Teal = trimColor(in.Teal)
	in.Lavender = trimColor(in.Lavender)

	return in
}

func (t Theme) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("missing required field: name")
	}
	fields := []struct {
		name  string
		value lipgloss.Color
	}{
		{"base", t.Base}, {"mantle", t.Mantle},
		{"surface0", t.Surface0}, {"surface1", t.Surface1},
		{"text", t.Text}, {"subtext", t.Subtext}, {"dim", t.Dim},
		{"accent", t.Accent}, {"blue", t.Blue}, {"sapphire", t.Sapphire},
		{"green", t.Green}, {"yellow", t.Yellow}, {"red", t.Red},
		{"peach", t.Peach}, {"teal", t.Teal}, {"lavender", t.Lavender},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(string(f.value)) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required color fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func themeSearchDirs(configDir string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	if strings.TrimSpace(configDir) != "" {
		add(filepath.Join(configDir, "themes"))
	}
	if env := strings.TrimSpace(os.Getenv(themeDirEnvVar)); env != "" {
		for _, part := range strings.Split(env, string(os.PathListSeparator)) {
			add(part)
		}
	}
	return out
}

func loadThemesFromDir(dir string) ([]Theme, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read theme dir %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	loaded := make([]Theme, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, readErr))
			continue
		}

		var t Theme
		if unmarshalErr := json.Unmarshal(data, &t); unmarshalErr != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", path, unmarshalErr))
			continue
		}

		t = normalizeTheme(t)
		if validateErr := t.validate(); validateErr != nil {
			errs = append(errs, fmt.Errorf("validate %s: %w", path, validateErr))
			continue
		}
		loaded = append(loaded, t)
	}

	return loaded, errors.Join(errs...)
}

func mergeThemes(base, extra []Theme) []Theme {
	if len(extra) == 0 {
		return base
	}
	merged := append([]Theme(nil), base...)
	indexByName := make(map[string]int, len(merged))
	for i, t := range merged {
		indexByName[strings.ToLower(strings.TrimSpace(t.Name))] = i
	}
	for _, t := range extra {
		k := strings.ToLower(strings.TrimSpace(t.Name))
		if i, ok := indexByName[k]; ok {
			merged[i] = t
			continue
		}
		indexByName[k] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

func setActiveThemeByNameLocked(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(themes) == 0 {
		return false
	}
	needle := strings.ToLower(name)
	for i, t := range themes {
		if strings.ToLower(t.Name) == needle {
			activeThemeIdx = i
			applyTheme(t)
			return true
		}
	}
	return false
}

// LoadThemes reloads the theme catalog from built-ins plus external
// theme files under <configDir>/themes and USAGETOP_THEME_DIR. Invalid
// files are skipped; the aggregated error reports them while valid
// themes stay available.
func LoadThemes(configDir string) error {
	themeMu.Lock()
	defer themeMu.Unlock()

	currentName := ""
	if activeThemeIdx >= 0 && activeThemeIdx < len(themes) {
		currentName = themes[activeThemeIdx].Name
	}

	nextThemes := builtinThemes()
	var errs []error
	for _, dir := range themeSearchDirs(configDir) {
		loaded, err := loadThemesFromDir(dir)
		if err != nil {
			errs = append(errs, err)
		}
		nextThemes = mergeThemes(nextThemes, loaded)
	}

	themes = nextThemes
	if !setActiveThemeByNameLocked(currentName) {
		activeThemeIdx = 0
		applyTheme(themes[0])
	}

	return errors.Join(errs...)
}

func AvailableThemes() []Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()

	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

func ActiveTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if activeThemeIdx < 0 || activeThemeIdx >= len(themes) {
		return themes[0]
	}
	return themes[activeThemeIdx]
}

func CycleTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()

	activeThemeIdx = (activeThemeIdx + 1) % len(themes)
	applyTheme(themes[activeThemeIdx])
	return themes[activeThemeIdx].Name
}

func ThemeName() string {
	t := ActiveTheme()
	if strings.TrimSpace(t.Icon) == "" {
		return t.Name
	}
	return t.Icon + " " + t.Name
}

func SetThemeByName(name string) bool {
	themeMu.Lock()
	defer themeMu.Unlock()
	return setActiveThemeByNameLocked(name)
}
