package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.StoreURL != "http://127.0.0.1:8000" || cfg.ListenAddr != ":8000" {
		t.Fatalf("unexpected endpoint defaults: %+v", cfg)
	}
	if cfg.ErrorDisplay != 4*time.Second {
		t.Fatalf("unexpected error display default: %s", cfg.ErrorDisplay)
	}
	if cfg.StateFile != ".sharpei_state.json" {
		t.Fatalf("unexpected state file default: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SHARPEI_STORE_URL", "http://tasks.local:9000")
	t.Setenv("SHARPEI_STATE_FILE", "state/custom.json")
	t.Setenv("SHARPEI_LOG_LEVEL", "debug")
	t.Setenv("SHARPEI_ERROR_DISPLAY_SECONDS", "7")
	t.Setenv("SHARPEI_REQUEST_TIMEOUT_SECONDS", "not-a-number")

	cfg := FromEnv(Default())
	if cfg.StoreURL != "http://tasks.local:9000" {
		t.Fatalf("unexpected store url: %q", cfg.StoreURL)
	}
	if cfg.StateFile != "state/custom.json" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.ErrorDisplay != 7*time.Second {
		t.Fatalf("unexpected error display: %s", cfg.ErrorDisplay)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("invalid env value should be ignored, got %s", cfg.RequestTimeout)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "store_url: http://from-file:8000\ndb_path: /tmp/tasks.db\nerror_display: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SHARPEI_DB_PATH", "/var/lib/sharpei.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreURL != "http://from-file:8000" {
		t.Fatalf("file value not applied: %q", cfg.StoreURL)
	}
	if cfg.DBPath != "/var/lib/sharpei.db" {
		t.Fatalf("env should win over file: %q", cfg.DBPath)
	}
	if cfg.ErrorDisplay != 2*time.Second {
		t.Fatalf("duration not parsed: %s", cfg.ErrorDisplay)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unset keys keep defaults: %q", cfg.LogLevel)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store_url: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsEmptyStore(t *testing.T) {
	cfg := Default()
	cfg.StoreURL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
