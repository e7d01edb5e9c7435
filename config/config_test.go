package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8090" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.CacheTTL.Std() != time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Browser.Stealth != "headless" {
		t.Errorf("Stealth = %q", cfg.Browser.Stealth)
	}
	if cfg.Browser.NavRetries != 3 || cfg.Browser.NavBackoff.Std() != 2*time.Second {
		t.Errorf("nav retry defaults = %d/%v", cfg.Browser.NavRetries, cfg.Browser.NavBackoff)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
cache_ttl: 30m
browser:
  stealth: http
  nav_retries: 5
  block: [images]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.CacheTTL.Std() != 30*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Browser.Stealth != "http" {
		t.Errorf("Stealth = %q", cfg.Browser.Stealth)
	}
	if cfg.Browser.NavRetries != 5 {
		t.Errorf("NavRetries = %d", cfg.Browser.NavRetries)
	}
	if len(cfg.Browser.Block) != 1 || cfg.Browser.Block[0] != "images" {
		t.Errorf("Block = %v", cfg.Browser.Block)
	}
	// Unset fields still get defaults.
	if cfg.Browser.NavTimeout.Std() != 30*time.Second {
		t.Errorf("NavTimeout = %v", cfg.Browser.NavTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `listen: ":9000"`)
	t.Setenv("PORT", "7777")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("BROWSER_STEALTH", "headful")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":7777" {
		t.Errorf("Listen = %q, env should win over file", cfg.Listen)
	}
	if cfg.CacheTTL.Std() != 15*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.Browser.Stealth != "headful" {
		t.Errorf("Stealth = %q", cfg.Browser.Stealth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
