package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Capture.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}
	if cfg.Capture.MaxItems != 20 {
		t.Errorf("expected max_items 20, got %d", cfg.Capture.MaxItems)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected level INFO, got %q", cfg.Logging.Level)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
server:
  port: 9000
storage:
  data_dir: /tmp/notes
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.GetDataDir() != "/tmp/notes" {
		t.Errorf("expected data dir /tmp/notes, got %q", cfg.GetDataDir())
	}
	// Defaults should still be set for unspecified fields
	if cfg.Capture.FetchTimeoutSeconds != 15 {
		t.Errorf("expected default fetch timeout, got %d", cfg.Capture.FetchTimeoutSeconds)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	if _, err := parse([]byte("server:\n  port: 70000\n")); err == nil {
		t.Error("expected error for out-of-range port")
	}
	if _, err := parse([]byte("capture:\n  max_items: -1\n")); err == nil {
		t.Error("expected error for negative max_items")
	}
	if _, err := parse([]byte("server: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Capture.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}
	if filepath.Base(cfg.DatabasePath()) != "permanence.db" {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
	if cfg.GetExportDir() != "permanence-export" {
		t.Errorf("unexpected export dir %q", cfg.GetExportDir())
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Errorf("unexpected fetch timeout %v", cfg.FetchTimeout())
	}

	cfg.Storage.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
