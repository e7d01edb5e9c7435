// Package config handles css-checker configuration from a YAML file with
// environment-variable overrides for the knobs that change per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "30m"/"2h" strings as well as
// plain nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: bad duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level service configuration.
type Config struct {
	Listen    string        `yaml:"listen"`
	LogLevel  string        `yaml:"log_level"` // debug | info | warn | error
	CacheTTL  Duration      `yaml:"cache_ttl"`
	HistoryDB string        `yaml:"history_db"`
	Browser   BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls Chrome lifecycle and page navigation.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch local.
	Remote string `yaml:"remote"`
	// Stealth selects the acquisition mode: http | headless | headful.
	// "http" disables the browser entirely and falls back to the probe.
	Stealth         string   `yaml:"stealth"`
	MemoryLimit     int64    `yaml:"memory_limit"`
	RecycleInterval Duration `yaml:"recycle_interval"`
	XvfbDisplay     string   `yaml:"xvfb_display"`
	// Block lists resource types to block while rendering (images, fonts,
	// media). Stylesheets are never blocked here.
	Block []string `yaml:"block"`

	NavTimeout  Duration `yaml:"nav_timeout"`
	NavRetries  int      `yaml:"nav_retries"`
	NavBackoff  Duration `yaml:"nav_backoff"`
	SettleDelay Duration `yaml:"settle_delay"`
}

// Load reads the YAML file at path (when non-empty), applies environment
// overrides, then defaults. An empty path yields a pure env+defaults config.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = Duration(d)
		}
	}
	if v := os.Getenv("BROWSER_REMOTE"); v != "" {
		c.Browser.Remote = v
	}
	if v := os.Getenv("BROWSER_STEALTH"); v != "" {
		c.Browser.Stealth = v
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8090"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = Duration(time.Hour)
	}
	if c.HistoryDB == "" {
		c.HistoryDB = "db/history.db"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = Duration(4 * time.Hour)
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if len(c.Browser.Block) == 0 {
		c.Browser.Block = []string{"images", "fonts", "media"}
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = Duration(30 * time.Second)
	}
	if c.Browser.NavRetries <= 0 {
		c.Browser.NavRetries = 3
	}
	if c.Browser.NavBackoff <= 0 {
		c.Browser.NavBackoff = Duration(2 * time.Second)
	}
	if c.Browser.SettleDelay <= 0 {
		c.Browser.SettleDelay = Duration(2 * time.Second)
	}
}
