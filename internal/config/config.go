// Package config loads and saves tally's TOML configuration and resolves
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "tally"

// Config holds all tally configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Categories CategoriesConfig `toml:"categories"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig points at the backend.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultBudgetID int64 `toml:"default_budget_id,omitempty"`
	ReportMonths    int   `toml:"report_months"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig controls the dashboard's refresh behavior.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// CategoriesConfig holds the category list defaults.
type CategoriesConfig struct {
	SortBy   string `toml:"sort_by"`
	SortDesc bool   `toml:"sort_desc"`
	GroupBy  string `toml:"group_by"`
}

// DaemonConfig controls the background sync watcher.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	AMQPURL      string `toml:"amqp_url,omitempty"`
	AMQPExchange string `toml:"amqp_exchange,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 15,
		},
		General: GeneralConfig{
			ReportMonths: 3,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
		Categories: CategoriesConfig{
			SortBy:  "order",
			GroupBy: "none",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  30,
			AMQPExchange: "tally.events",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// TokenPath is where the bearer token is kept.
func TokenPath() string {
	return filepath.Join(Dir(), "token")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appName)
}

// CachePath is the sqlite snapshot location.
func CachePath() string {
	return filepath.Join(CacheDir(), "tally.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes cfg to path with mode 0600.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// APIURL returns the base URL from TALLY_API_URL or config, in that order.
func APIURL(cfg Config) string {
	if u := strings.TrimSpace(os.Getenv("TALLY_API_URL")); u != "" {
		return u
	}
	return cfg.API.BaseURL
}

// EnvToken returns TALLY_TOKEN, if set.
func EnvToken() string {
	return strings.TrimSpace(os.Getenv("TALLY_TOKEN"))
}

// Timeout is the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// RefreshInterval is the TUI auto-refresh period.
func (c Config) RefreshInterval() time.Duration {
	if c.TUI.RefreshIntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TUI.RefreshIntervalSec) * time.Second
}

// PollInterval is the daemon poll period.
func (c Config) PollInterval() time.Duration {
	if c.Daemon.IntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}
