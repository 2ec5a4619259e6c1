package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "DB_PATH", "PIPELINE_INTERVAL_SECONDS", "FETCH_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Interval != 600*time.Second {
		t.Errorf("expected default interval 600s, got %v", cfg.Interval)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("expected default fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if cfg.Port != ":8080" {
		t.Errorf("expected default port :8080, got %q", cfg.Port)
	}
	if cfg.Env != "local" {
		t.Errorf("expected default env local, got %q", cfg.Env)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIPELINE_INTERVAL_SECONDS", "60")
	t.Setenv("OPENSKY_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("DB_PATH", "/tmp/x.db")

	cfg := Load()
	if cfg.Interval != time.Minute {
		t.Errorf("expected interval 1m, got %v", cfg.Interval)
	}
	if !cfg.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify to be true")
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("expected DB path override, got %q", cfg.DBPath)
	}
}

func TestNonPositiveIntervalFallsBack(t *testing.T) {
	t.Setenv("PIPELINE_INTERVAL_SECONDS", "-5")

	if got := Load().Interval; got != 600*time.Second {
		t.Errorf("expected fallback to 600s, got %v", got)
	}
}
