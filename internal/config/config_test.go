package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
  lockTtl: 5s
cors:
  allowOrigins: ["http://localhost:5173"]
seed:
  enabled: false
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Seed.Enabled {
		t.Fatalf("expected seed disabled")
	}
	if cfg.Log.Mode != "dev" {
		t.Fatalf("expected default log mode, got %q", cfg.Log.Mode)
	}
	if len(cfg.CORS.AllowOrigins) != 1 {
		t.Fatalf("expected one origin, got %v", cfg.CORS.AllowOrigins)
	}
	if got := TTLDuration(cfg.Redis.LockTTL, time.Second); got != 5*time.Second {
		t.Fatalf("expected 5s lock ttl, got %s", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Seed.Enabled || cfg.Server.Port != "8080" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %s", got)
	}
}
