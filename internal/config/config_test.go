package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/diet
redis:
  url: localhost:6379
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults not applied: %+v", cfg.Log)
	}
	if cfg.Queue.Retention.Std() != 15*time.Minute {
		t.Errorf("retention default = %v", cfg.Queue.Retention)
	}
	if cfg.Queue.MaxAttempts != 3 {
		t.Errorf("max_attempts default = %d", cfg.Queue.MaxAttempts)
	}
	if cfg.Worker.PollInterval.Std() != 500*time.Millisecond {
		t.Errorf("poll_interval default = %v", cfg.Worker.PollInterval)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not carried into runtime config")
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	path := writeConfig(t, `
redis:
  url: localhost:6379
`)
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected error for missing database.url")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: console
database:
  url: postgres://localhost:5432/diet
redis:
  url: localhost:6379
queue:
  retention: 5m
  lease_ttl: 30s
  max_attempts: 5
worker:
  count: 4
  poll_interval: 1s
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Queue.LeaseTTL.Std() != 30*time.Second {
		t.Errorf("lease_ttl = %v", cfg.Queue.LeaseTTL)
	}
	if cfg.Queue.MaxAttempts != 5 {
		t.Errorf("max_attempts = %d", cfg.Queue.MaxAttempts)
	}
	if cfg.Worker.Count != 4 {
		t.Errorf("worker.count = %d", cfg.Worker.Count)
	}
}
