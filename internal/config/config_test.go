package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("APP_ENV", "")
	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("default port: %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("default env: %s", cfg.Env)
	}
	if cfg.DatabaseDSN == "" {
		t.Fatal("default DSN must not be empty")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("APP_ENV", "production")
	cfg := Load()
	if cfg.Port != "9999" || cfg.Env != "production" {
		t.Fatalf("env override not applied: %+v", cfg)
	}
}
