package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Jobs.RevalueInterval != 30*time.Second {
		t.Errorf("RevalueInterval = %v, want 30s", cfg.Jobs.RevalueInterval)
	}
	if cfg.Portfolio.RiskFreeRate != 2.0 {
		t.Errorf("RiskFreeRate = %v, want 2.0", cfg.Portfolio.RiskFreeRate)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "http://localhost:3000,https://example.org")
	t.Setenv("PORTFOLIO_MAX_SNAPSHOTS", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Portfolio.MaxSnapshots != 500 {
		t.Errorf("MaxSnapshots = %d, want 500", cfg.Portfolio.MaxSnapshots)
	}
}
