// Package appupdate checks GitHub releases for a newer stable build
// and works out the upgrade command matching how this binary was
// installed.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/usagetop/usagetop/releases/latest"
	defaultInstallScriptURL = "https://github.com/usagetop/usagetop/releases/latest/download/install.sh"

	// The check runs on startup in the background; keep it snappy so a
	// slow network never delays anything visible.
	defaultRequestTimeout = 1500 * time.Millisecond
)

type InstallMethod string

const (
	InstallMethodUnknown       InstallMethod = "unknown"
	InstallMethodHomebrew      InstallMethod = "homebrew"
	InstallMethodGoInstall     InstallMethod = "go_install"
	InstallMethodInstallScript InstallMethod = "install_script"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	InstallMethod   InstallMethod
	UpgradeHint     string
}

func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := normalizeReleaseVersion(opts.CurrentVersion)
	method := detectInstallMethod(resolveExecutablePath(opts.ExecutablePath))

	result := Result{
		CurrentVersion: current,
		InstallMethod:  method,
		UpgradeHint:    upgradeHint(method),
	}

	// Dev builds and prereleases never prompt for an update.
	if current == "" {
		return result, nil
	}

	latest, err := fetchLatestReleaseVersion(ctx, opts, current)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func fetchLatestReleaseVersion(ctx context.Context, opts CheckOptions, current string) (string, error) {
	latestURL := strings.TrimSpace(opts.LatestReleaseURL)
	if latestURL == "" {
		latestURL = defaultLatestReleaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, latestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build latest release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "usagetop/"+current)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode latest release payload: %w", err)
	}

	latest := normalizeReleaseVersion(payload.TagName)
	if latest == "" {
		return "", fmt.Errorf("latest release tag is not a stable semver: %q", payload.TagName)
	}
	return latest, nil
}

func resolveExecutablePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return normalizePathForMatch(p)
	}
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil && strings.TrimSpace(resolved) != "" {
		exePath = resolved
	}
	return normalizePathForMatch(exePath)
}

func normalizePathForMatch(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func detectInstallMethod(path string) InstallMethod {
	if path == "" {
		return InstallMethodUnknown
	}

	switch {
	case strings.Contains(path, "/cellar/usagetop/"), path == "/opt/homebrew/bin/usagetop":
		return InstallMethodHomebrew
	case looksLikeGoInstallPath(path):
		return InstallMethodGoInstall
	case looksLikeInstallScriptPath(path):
		return InstallMethodInstallScript
	default:
		return InstallMethodUnknown
	}
}

func looksLikeGoInstallPath(path string) bool {
	if strings.HasSuffix(path, "/go/bin/usagetop") || strings.HasSuffix(path, "/go/bin/usagetop.exe") {
		return true
	}

	if gobin := normalizePathForMatch(os.Getenv("GOBIN")); gobin != "" {
		if path == gobin+"/usagetop" || path == gobin+"/usagetop.exe" {
			return true
		}
	}

	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		gopath := normalizePathForMatch(gp)
		if gopath == "" {
			continue
		}
		if path == gopath+"/bin/usagetop" || path == gopath+"/bin/usagetop.exe" {
			return true
		}
	}

	return false
}

func looksLikeInstallScriptPath(path string) bool {
	if path == "/usr/local/bin/usagetop" || path == "/usr/bin/usagetop" {
		return true
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := normalizePathForMatch(home)
		if homePath != "" {
			if path == homePath+"/.local/bin/usagetop" || path == homePath+"/bin/usagetop" {
				return true
			}
		}
	}

	return false
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallMethodHomebrew:
		return "brew upgrade usagetop"
	case InstallMethodGoInstall:
		return "go install github.com/usagetop/usagetop/cmd/usagetop@latest"
	default:
		return "curl -fsSL " + defaultInstallScriptURL + " | bash"
	}
}

// normalizeReleaseVersion accepts "1.2.3" or "v1.2.3" and rejects
// anything that is not a stable semver release.
func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
