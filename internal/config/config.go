// Package config loads petsim settings.
// Resolution order (highest to lowest priority):
// 1. Environment variables (PETSIM_*)
// 2. .env file next to the config file (or in the working directory)
// 3. YAML config file (--config)
// 4. Defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/petsim/internal/forecast"
	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region types
// Config holds all petsim configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" envPrefix:"STORE_"`
	Forecaster ForecasterConfig `yaml:"forecaster" envPrefix:"FORECASTER_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Schedule   ScheduleConfig   `yaml:"schedule" envPrefix:"SCHEDULE_"`

	// WindowWeeks is the number of most recent weeks fed to the forecaster.
	WindowWeeks int `yaml:"window_weeks" env:"WINDOW_WEEKS"`

	// LedgerPath is the SQLite run ledger. When empty, the sqlite backend
	// keeps runs in the store database and the json backend keeps none.
	LedgerPath string `yaml:"ledger_path" env:"LEDGER_PATH"`
}

// StoreConfig selects where records are persisted.
type StoreConfig struct {
	// Backend is "json" or "sqlite".
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
}

// ForecasterConfig selects and tunes the activity forecaster.
type ForecasterConfig struct {
	// Kind is "forest", "weekday_mean" or "remote".
	Kind    string `yaml:"kind" env:"KIND"`
	Trees   int    `yaml:"trees" env:"TREES"`
	Workers int    `yaml:"workers" env:"WORKERS"`
	Seed    uint64 `yaml:"seed" env:"SEED"`

	// JitterSeed fixes the jitter stream; nil draws from process entropy.
	JitterSeed *uint64 `yaml:"jitter_seed" env:"JITTER_SEED"`

	RemoteAddr    string        `yaml:"remote_addr" env:"REMOTE_ADDR"`
	RemoteTimeout time.Duration `yaml:"remote_timeout" env:"REMOTE_TIMEOUT"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// ScheduleConfig drives `petsim schedule`.
type ScheduleConfig struct {
	// Cron is a five-field cron expression or descriptor ("@daily").
	Cron string `yaml:"cron" env:"CRON"`
	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// #endregion types

// #region constants
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	KindForest      = "forest"
	KindWeekdayMean = "weekday_mean"
	KindRemote      = "remote"

	EnvPrefix = "PETSIM_"
)

// #endregion constants

// #region default
// Default returns the default configuration.
func Default() *Config {
	forest := forecast.DefaultForestConfig()
	return &Config{
		Store: StoreConfig{
			Backend: BackendJSON,
			Path:    "pet_data.json",
		},
		Forecaster: ForecasterConfig{
			Kind:          KindForest,
			Trees:         forest.Trees,
			Workers:       forest.Workers,
			Seed:          forest.Seed,
			RemoteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Schedule: ScheduleConfig{
			Cron: "@daily",
		},
		WindowWeeks: state.DefaultWindowWeeks,
	}
}

// ForestConfig returns the forest settings.
func (f ForecasterConfig) ForestConfig() forecast.ForestConfig {
	return forecast.ForestConfig{Trees: f.Trees, Seed: f.Seed, Workers: f.Workers}
}

// #endregion default

// #region load
// Load resolves configuration from defaults, the YAML file at path (if
// non-empty), an optional .env file, then environment variables, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	environ, err := environment(path)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	cfg.Forecaster.Kind = strings.ToLower(cfg.Forecaster.Kind)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment merges the optional .env file under the process environment.
// The process environment is never modified.
func environment(configPath string) (map[string]string, error) {
	dotenv := ".env"
	if configPath != "" {
		dotenv = filepath.Join(filepath.Dir(configPath), ".env")
	}

	merged := map[string]string{}
	if _, err := os.Stat(dotenv); err == nil {
		vars, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dotenv, err)
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		merged[k] = v
	}
	return merged, nil
}

// #endregion load

// #region validate
// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path: must not be empty"))
	}
	if c.WindowWeeks < 1 {
		errs = append(errs, fmt.Errorf("window_weeks: must be >= 1, got %d", c.WindowWeeks))
	}

	switch c.Forecaster.Kind {
	case KindForest:
		if c.Forecaster.Trees < 1 {
			errs = append(errs, fmt.Errorf("forecaster.trees: must be >= 1, got %d", c.Forecaster.Trees))
		}
		if c.Forecaster.Workers < 0 {
			errs = append(errs, fmt.Errorf("forecaster.workers: must be >= 0, got %d", c.Forecaster.Workers))
		}
	case KindWeekdayMean:
	case KindRemote:
		if c.Forecaster.RemoteAddr == "" {
			errs = append(errs, errors.New("forecaster.remote_addr: required for remote forecaster"))
		}
		if c.Forecaster.RemoteTimeout <= 0 {
			errs = append(errs, errors.New("forecaster.remote_timeout: must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("forecaster.kind: unknown kind %q", c.Forecaster.Kind))
	}

	if c.Schedule.Cron == "" {
		errs = append(errs, errors.New("schedule.cron: must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// #endregion validate
