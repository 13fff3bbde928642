package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port == "" || cfg.Database.Path == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Cache.TTL != 600*time.Second {
		t.Fatalf("default cache TTL = %s, want 600s", cfg.Cache.TTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("DATABASE_PATH", "/tmp/env.db")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("CACHE_TTL_SECONDS", "30")
	defer func() {
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("CACHE_TTL_SECONDS")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/env.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != "6379" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("cache TTL = %s, want 30s", cfg.Cache.TTL)
	}
}
