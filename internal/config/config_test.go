package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://finance.example.com"
	cfg.Categories.SortBy = "name"
	cfg.Categories.GroupBy = "category_group"
	cfg.General.DefaultBudgetID = 42

	if err := SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"tokyo-night\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.API.TimeoutSec != 15 {
		t.Errorf("timeout default lost: %d", cfg.API.TimeoutSec)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TALLY_API_URL", "http://override:9000")
	t.Setenv("TALLY_TOKEN", " abc ")
	if got := APIURL(DefaultConfig()); got != "http://override:9000" {
		t.Errorf("APIURL = %q", got)
	}
	if EnvToken() != "abc" {
		t.Errorf("EnvToken = %q", EnvToken())
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	if TokenPath() != filepath.Join("/cfg", "tally", "token") {
		t.Errorf("TokenPath = %q", TokenPath())
	}
	if CachePath() != filepath.Join("/cache", "tally", "tally.db") {
		t.Errorf("CachePath = %q", CachePath())
	}
}
