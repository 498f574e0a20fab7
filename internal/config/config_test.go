package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.ContentCacheTTL.Std() != 15*time.Minute {
		t.Errorf("unexpected content cache TTL: %v", cfg.ContentCacheTTL)
	}
	if cfg.RateLimit.Max == 0 {
		t.Error("rate limit should have a default")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen_addr: ":9000"
database_path: "/tmp/test.db"
redis_addr: "localhost:6379"
content_cache_ttl: 5m
rate_limit:
  max: 10
  window: 30s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis addr: %q", cfg.RedisAddr)
	}
	if cfg.ContentCacheTTL.Std() != 5*time.Minute {
		t.Errorf("unexpected TTL: %v", cfg.ContentCacheTTL)
	}
	if cfg.RateLimit.Max != 10 || cfg.RateLimit.Window.Std() != 30*time.Second {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("unexpected listen addr: %q", cfg.ListenAddr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("env override lost: %q", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("env override lost: %q", cfg.RedisAddr)
	}
}

func TestMalformedYAMLRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("listen_addr: [broken"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
