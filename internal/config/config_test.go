package config

import (
	"testing"
	"time"

	"github.com/sportsdesk/cricketwire/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRICAPI_ENABLED", "true")
	t.Setenv("CRICAPI_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("app env: %s", cfg.AppEnv)
	}
	if cfg.MaxWorkers != 4 {
		t.Fatalf("max workers: %d", cfg.MaxWorkers)
	}
	if cfg.OutputDir != "./data" {
		t.Fatalf("output dir: %s", cfg.OutputDir)
	}
	if !cfg.CompletedOnly {
		t.Fatalf("completed-only should default on")
	}
	if cfg.CricAPI.BaseURL != "https://api.cricapi.com" {
		t.Fatalf("cricapi base url: %s", cfg.CricAPI.BaseURL)
	}
	if cfg.CricAPI.Timeout != 20*time.Second {
		t.Fatalf("cricapi timeout: %s", cfg.CricAPI.Timeout)
	}
	if len(cfg.WarmupMarkers) != 2 {
		t.Fatalf("warmup markers: %v", cfg.WarmupMarkers)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("log level: %v", cfg.LogLevel)
	}
}

func TestLoadRequiresAProvider(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when no provider is enabled")
	}
}

func TestLoadRequiresCredentialsForEnabledProviders(t *testing.T) {
	t.Setenv("CRICAPI_ENABLED", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing CRICAPI_KEY error")
	}

	t.Setenv("CRICAPI_ENABLED", "false")
	t.Setenv("ESPN_ENABLED", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing ESPN_SERIES_IDS error")
	}

	t.Setenv("ESPN_ENABLED", "false")
	t.Setenv("SPORTMONKS_ENABLED", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing SPORTMONKS_TOKEN error")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CRICAPI_ENABLED", "true")
	t.Setenv("CRICAPI_KEY", "k")

	t.Setenv("MAX_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected worker bound error")
	}
	t.Setenv("MAX_WORKERS", "banana")
	if _, err := Load(); err == nil {
		t.Fatalf("expected worker parse error")
	}
	t.Setenv("MAX_WORKERS", "8")

	t.Setenv("CRICAPI_TIMEOUT", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected timeout bound error")
	}
	t.Setenv("CRICAPI_TIMEOUT", "30s")

	t.Setenv("DB_ENABLED", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected DB_URL requirement error")
	}
	t.Setenv("DB_URL", "postgres://localhost/cricketwire?sslmode=disable")

	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatalf("expected app env error")
	}
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxWorkers != 8 || cfg.CricAPI.Timeout != 30*time.Second || !cfg.DBEnabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	got := splitCSV(" world cup , , t20 blast,")
	if len(got) != 2 || got[0] != "world cup" || got[1] != "t20 blast" {
		t.Fatalf("splitCSV: %v", got)
	}
	if out := splitCSV(""); len(out) != 0 {
		t.Fatalf("empty input: %v", out)
	}
}
