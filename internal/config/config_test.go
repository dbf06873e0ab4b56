package config

import (
	"strings"
	"testing"
	"time"

	"bossfight/internal/catalog"
	"bossfight/logging"
)

type envTestConfig struct {
	Port int `env:"BOSSFIGHT_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("BOSSFIGHT_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":5000" || cfg.StoreKind() != StoreFile || cfg.StateFile != "game_state.json" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.MediaDir != "media" || cfg.LevelUpVideo != "/media/next_level.mp4" || cfg.CatalogFile != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AdvancePolicy != catalog.PolicyWrap {
		t.Fatalf("expected wrap policy, got %s", cfg.AdvancePolicy)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("expected 5s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.Locale().String() != "en" || cfg.MinSeverity() != logging.SeverityInfo {
		t.Fatalf("unexpected locale %s or severity %s", cfg.Locale(), cfg.MinSeverity())
	}
	if cfg.Observability().TracingEnabled() {
		t.Fatalf("tracing must be opt-in")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOSSFIGHT_ADDR", "127.0.0.1:8080")
	t.Setenv("BOSSFIGHT_STORE", "SQLite")
	t.Setenv("BOSSFIGHT_ADVANCE_POLICY", "clamp")
	t.Setenv("BOSSFIGHT_DEFAULT_LOCALE", "ru")
	t.Setenv("BOSSFIGHT_LOG_MIN_SEVERITY", "warn")
	t.Setenv("BOSSFIGHT_CATALOG_WATCH", "true")
	t.Setenv("BOSSFIGHT_SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("BOSSFIGHT_OTEL_ENABLED", "true")
	t.Setenv("BOSSFIGHT_OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" || cfg.StoreKind() != StoreSQLite || !cfg.CatalogWatch {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.AdvancePolicy != catalog.PolicyClamp {
		t.Fatalf("expected clamp policy, got %s", cfg.AdvancePolicy)
	}
	if cfg.Locale().String() != "ru" || cfg.MinSeverity() != logging.SeverityWarn {
		t.Fatalf("unexpected locale %s or severity %s", cfg.Locale(), cfg.MinSeverity())
	}
	if cfg.ShutdownTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
	if !cfg.Observability().TracingEnabled() {
		t.Fatalf("expected tracing enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BOSSFIGHT_STORE":            "redis",
		"BOSSFIGHT_ADVANCE_POLICY":   "sideways",
		"BOSSFIGHT_LOG_MIN_SEVERITY": "loud",
		"BOSSFIGHT_SHUTDOWN_TIMEOUT": "0s",
		"BOSSFIGHT_DEFAULT_LOCALE":   "not a locale!",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to fail", key, value)
			}
		})
	}
}
