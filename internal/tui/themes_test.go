package tui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetThemeByName_CaseInsensitive(t *testing.T) {
	t.Cleanup(func() { SetThemeByName("Catppuccin Mocha") })

	if !SetThemeByName("dRaCuLa") {
		t.Fatal("expected Dracula to resolve")
	}
	if ActiveTheme().Name != "Dracula" {
		t.Fatalf("active = %q", ActiveTheme().Name)
	}
	if SetThemeByName("No Such Theme") {
		t.Fatal("unknown theme should not resolve")
	}
	if ActiveTheme().Name != "Dracula" {
		t.Fatal("failed lookup changed the active theme")
	}
}

func TestCycleTheme_WrapsAround(t *testing.T) {
	t.Cleanup(func() { SetThemeByName("Catppuccin Mocha") })

	seen := map[string]bool{}
	n := len(AvailableThemes())
	for i := 0; i < n; i++ {
		seen[CycleTheme()] = true
	}
	if len(seen) != n {
		t.Fatalf("cycled through %d distinct themes, want %d", len(seen), n)
	}
}

func TestLoadThemes_ExternalDir(t *testing.T) {
	t.Cleanup(func() {
		themeMu.Lock()
		themes = builtinThemes()
		activeThemeIdx = 0
		applyTheme(themes[0])
		themeMu.Unlock()
	})

	configDir := t.TempDir()
	themeDir := filepath.Join(configDir, "themes")
	if err := os.MkdirAll(themeDir, 0o755); err != nil {
		t.Fatal(err)
	}

	valid := `{
  "name": "Test Theme", "icon": "T",
  "base": "#000000", "mantle": "#000000",
  "surface0": "#111111", "surface1": "#222222",
  "text": "#ffffff", "subtext": "#cccccc", "dim": "#888888",
  "accent": "#ff00ff", "blue": "#0000ff", "sapphire": "#00ffff",
  "green": "#00ff00", "yellow": "#ffff00", "red": "#ff0000",
  "peach": "#ffaa00", "teal": "#00ffaa", "lavender": "#aaaaff"
}`
	if err := os.WriteFile(filepath.Join(themeDir, "test.json"), []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(themeDir, "broken.json"), []byte(`{"name":`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := LoadThemes(configDir)
	if err == nil {
		t.Fatal("expected aggregated error for broken.json")
	}

	found := false
	for _, theme := range AvailableThemes() {
		if theme.Name == "Test Theme" {
			found = true
		}
	}
	if !found {
		t.Fatal("valid external theme not loaded")
	}
}

func TestLoadThemes_IncompleteThemeSkipped(t *testing.T) {
	t.Cleanup(func() {
		themeMu.Lock()
		themes = builtinThemes()
		activeThemeIdx = 0
		applyTheme(themes[0])
		themeMu.Unlock()
	})

	configDir := t.TempDir()
	themeDir := filepath.Join(configDir, "themes")
	if err := os.MkdirAll(themeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(themeDir, "partial.json"), []byte(`{"name":"Partial","base":"#000"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadThemes(configDir); err == nil {
		t.Fatal("expected validation error")
	}
	for _, theme := range AvailableThemes() {
		if theme.Name == "Partial" {
			t.Fatal("incomplete theme made it into the catalog")
		}
	}
}
