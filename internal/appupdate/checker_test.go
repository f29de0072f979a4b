package appupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizeReleaseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid with prefix", input: "v1.2.3", want: "v1.2.3"},
		{name: "valid without prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "pre-release skipped", input: "v1.2.3-rc.1", want: ""},
		{name: "dev skipped", input: "dev", want: ""},
		{name: "empty skipped", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeReleaseVersion(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeReleaseVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectInstallMethod(t *testing.T) {
	tests := []struct {
		name string
		path string
		want InstallMethod
	}{
		{
			name: "homebrew cellar",
			path: "/opt/homebrew/Cellar/usagetop/1.2.3/bin/usagetop",
			want: InstallMethodHomebrew,
		},
		{
			name: "go install default",
			path: "/Users/test/go/bin/usagetop",
			want: InstallMethodGoInstall,
		},
		{
			name: "install script default",
			path: "/usr/local/bin/usagetop",
			want: InstallMethodInstallScript,
		},
		{
			name: "unknown",
			path: "/tmp/usagetop",
			want: InstallMethodUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectInstallMethod(normalizePathForMatch(tt.path))
			if got != tt.want {
				t.Fatalf("detectInstallMethod(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckUpdateAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0"}`))
	}))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		ExecutablePath:   "/opt/homebrew/Cellar/usagetop/1.2.0/bin/usagetop",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
		Timeout:          time.Second,
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=true")
	}
	if result.LatestVersion != "v1.3.0" {
		t.Fatalf("LatestVersion = %q, want v1.3.0", result.LatestVersion)
	}
	if result.UpgradeHint != "brew upgrade usagetop" {
		t.Fatalf("UpgradeHint = %q", result.UpgradeHint)
	}
}

func TestCheckNoUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0"}`))
	}))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		ExecutablePath:   "/usr/local/bin/usagetop",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=false")
	}
}

func TestCheckSkipsDevVersion(t *testing.T) {
	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "dev",
		LatestReleaseURL: "http://127.0.0.1:0/does-not-matter",
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=false")
	}
	if result.CurrentVersion != "" {
		t.Fatalf("CurrentVersion = %q, want empty", result.CurrentVersion)
	}
}

func TestCheckLatestReleaseHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckUnknownInstallMethodUsesActionableHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0"}`))
	}))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		ExecutablePath:   "/tmp/usagetop-old",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=true")
	}
	if !strings.HasPrefix(result.UpgradeHint, "curl ") {
		t.Fatalf("UpgradeHint = %q, want curl install command", result.UpgradeHint)
	}
}
