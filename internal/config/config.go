// Package config reads server settings from BOSSFIGHT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"bossfight/internal/catalog"
	"bossfight/internal/observability"
	"bossfight/logging"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Addr            string         `env:"BOSSFIGHT_ADDR" envDefault:":5000"`
	Store           string         `env:"BOSSFIGHT_STORE" envDefault:"file"`
	StateFile       string         `env:"BOSSFIGHT_STATE_FILE" envDefault:"game_state.json"`
	SQLitePath      string         `env:"BOSSFIGHT_SQLITE_PATH" envDefault:"game_state.db"`
	MediaDir        string         `env:"BOSSFIGHT_MEDIA_DIR" envDefault:"media"`
	CatalogFile     string         `env:"BOSSFIGHT_CATALOG_FILE"`
	CatalogWatch    bool           `env:"BOSSFIGHT_CATALOG_WATCH" envDefault:"false"`
	AdvancePolicy   catalog.Policy `env:"BOSSFIGHT_ADVANCE_POLICY" envDefault:"wrap"`
	LevelUpVideo    string         `env:"BOSSFIGHT_LEVEL_UP_VIDEO" envDefault:"/media/next_level.mp4"`
	DefaultLocale   string         `env:"BOSSFIGHT_DEFAULT_LOCALE" envDefault:"en"`
	LogJSONFile     string         `env:"BOSSFIGHT_LOG_JSON_FILE"`
	LogMinSeverity  string         `env:"BOSSFIGHT_LOG_MIN_SEVERITY" envDefault:"info"`
	ShutdownTimeout time.Duration  `env:"BOSSFIGHT_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	EnablePprof     bool           `env:"BOSSFIGHT_ENABLE_PPROF" envDefault:"false"`
	OTelEnabled     bool           `env:"BOSSFIGHT_OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string         `env:"BOSSFIGHT_OTEL_ENDPOINT"`
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: address is required")
	}
	if _, err := language.Parse(c.DefaultLocale); err != nil {
		return fmt.Errorf("config: default locale: %w", err)
	}
	if _, err := logging.ParseSeverity(c.LogMinSeverity); err != nil {
		return fmt.Errorf("config: log severity: %w", err)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// StoreKind is the normalized backend name.
func (c Config) StoreKind() string {
	return strings.ToLower(strings.TrimSpace(c.Store))
}

// Locale returns the parsed default locale, English when unparsable.
func (c Config) Locale() language.Tag {
	tag, err := language.Parse(c.DefaultLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// MinSeverity returns the parsed log threshold, info when unparsable.
func (c Config) MinSeverity() logging.Severity {
	severity, err := logging.ParseSeverity(c.LogMinSeverity)
	if err != nil {
		return logging.SeverityInfo
	}
	return severity
}

func (c Config) Observability() observability.Config {
	return observability.Config{
		EnablePprof:  c.EnablePprof,
		OTelEnabled:  c.OTelEnabled,
		OTelEndpoint: c.OTelEndpoint,
	}
}
