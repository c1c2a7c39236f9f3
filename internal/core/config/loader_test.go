package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_ExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_REDIS_URL", "redis://localhost:6379/0")

	path := writeConfig(t, `
server:
  port: 9090
logging:
  level: debug
  format: text
redis:
  url: ${TEST_REDIS_URL}
pipeline:
  session_ttl: 12h
  sweep_interval: 5m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("env var not expanded, got %q", cfg.Redis.URL)
	}

	// Explicit durations parse from their string form.
	if cfg.Pipeline.SessionTTL != 12*time.Hour {
		t.Errorf("expected 12h session ttl, got %v", cfg.Pipeline.SessionTTL)
	}
	if cfg.Pipeline.SweepInterval != 5*time.Minute {
		t.Errorf("expected 5m sweep interval, got %v", cfg.Pipeline.SweepInterval)
	}

	// Unset pipeline values fall back to the defaults.
	if cfg.Pipeline.CheckpointTTL != 7*24*time.Hour {
		t.Errorf("expected 168h checkpoint ttl, got %v", cfg.Pipeline.CheckpointTTL)
	}
	if cfg.Pipeline.RestoreWindow != 24*time.Hour {
		t.Errorf("expected 24h restore window, got %v", cfg.Pipeline.RestoreWindow)
	}
	if cfg.Pipeline.ActiveWindow != time.Hour {
		t.Errorf("expected 1h active window, got %v", cfg.Pipeline.ActiveWindow)
	}
	if cfg.Pipeline.NotificationBuffer != 64 {
		t.Errorf("expected buffer 64, got %d", cfg.Pipeline.NotificationBuffer)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  session_ttl: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestLoad_EmptyFileUsesAllDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
