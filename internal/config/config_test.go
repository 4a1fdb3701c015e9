package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the loader at an empty config home.
func isolate(t *testing.T) string {
	t.Helper()
	ResetCache()
	t.Cleanup(ResetCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/ppi/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := Path(), filepath.Join(home, ".config", "ppi", "config.yml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv(EnvConfigPath, "/etc/ppi.yml")
	if got := Path(); got != "/etc/ppi.yml" {
		t.Errorf("Path() with %s = %q", EnvConfigPath, got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_Valid(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `addr: 0.0.0.0:9000
log_level: debug
layout: force
search_delay: 250ms
lookup_delay: 1s
rate_limit: 0
notification_limit: 5
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" || cfg.LogLevel != "debug" || cfg.Layout != "force" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SearchDelay != 250*time.Millisecond || cfg.LookupDelay != time.Second {
		t.Errorf("delays = %v, %v", cfg.SearchDelay, cfg.LookupDelay)
	}
	if cfg.CSVDelay != 2*time.Second {
		t.Errorf("CSVDelay = %v, want default 2s", cfg.CSVDelay)
	}
	if cfg.RateLimit != 0 || cfg.NotificationLimit != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "addr: 0.0.0.0:9000\nlog_level: warn\n")
	t.Setenv(EnvAddr, "localhost:7000")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "localhost:7000" || cfg.LogLevel != "error" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Cached(t *testing.T) {
	dir := isolate(t)

	first, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "addr: 0.0.0.0:9000\n")

	second, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("Load() did not return the cached config")
	}

	ResetCache()
	third, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if third.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr after reset = %q", third.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"bad yaml", "addr: [unclosed", false},
		{"bad duration", "search_delay: soon\n", false},
		{"bad log level", "log_level: loud\n", true},
		{"negative delay", "csv_delay: -1s\n", true},
		{"negative rate", "rate_limit: -1\n", true},
		{"zero upload cap", "max_upload_bytes: 0\n", true},
		{"zero notification limit", "notification_limit: 0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, dir, tt.content)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should return error")
			}
			if errors.Is(err, ErrInvalid) != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", !tt.invalid, tt.invalid, err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.Layout = "circle"
	cfg.SearchDelay = 10 * time.Millisecond
	if err := cfg.Save(Path()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigDir, ConfigFile)); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := map[string]string{
		"":              "",
		"/abs/path":     "/abs/path",
		"~/ppi/cfg.yml": filepath.Join(home, "ppi/cfg.yml"),
	}
	for in, want := range tests {
		if got := ExpandTilde(in); got != want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", in, got, want)
		}
	}
}
