package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Load loads configuration from all available sources
// Hierarchy (lowest to highest precedence):
// 1. Built-in defaults
// 2. Config file (path argument, else SENTRY_CONFIG, else ~/.config/sentry/config.toml)
// 3. Environment variables (SENTRY_*)
//
// Flags are applied on top by the caller.
func Load(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	explicit := true
	if path == "" {
		path = os.Getenv("SENTRY_CONFIG")
	}
	if path == "" {
		path = DefaultConfigPath()
		explicit = false
	}

	if err := loadConfigFile(cfg, ExpandPath(path)); err != nil {
		// A missing default file is fine; a missing explicit one is not
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	cfg.Feed.Blocklist = ExpandPath(cfg.Feed.Blocklist)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadConfigFile decodes a TOML or YAML file over cfg. Keys absent from the
// file keep their current values.
func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.Decode(string(data), cfg)
		return err
	}
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) {
	if env := os.Getenv("SENTRY_ADDR"); env != "" {
		cfg.Stream.Address = env
	}
	if env := os.Getenv("SENTRY_LOG_LEVEL"); env != "" {
		cfg.Log.Level = env
	}
	if env := os.Getenv("SENTRY_LOG_FILE"); env != "" {
		cfg.Log.File = env
	}
	if env := os.Getenv("SENTRY_FEED_LISTEN"); env != "" {
		cfg.Feed.Listen = env
	}
	if env := os.Getenv("SENTRY_BLOCKLIST"); env != "" {
		cfg.Feed.Blocklist = env
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Stream.Address == "" {
		return fmt.Errorf("stream.address must not be empty")
	}
	if c.Stream.MaxReconnectAttempts < 0 {
		return fmt.Errorf("stream.max_reconnect_attempts must be >= 0, got %d", c.Stream.MaxReconnectAttempts)
	}
	durations := []struct {
		name string
		d    Duration
	}{
		{"stream.reconnect_backoff", c.Stream.ReconnectBackoff},
		{"stream.handshake_timeout", c.Stream.HandshakeTimeout},
		{"feed.interval", c.Feed.Interval},
		{"monitor.tick", c.Monitor.Tick},
		{"monitor.banner_timeout", c.Monitor.BannerTimeout},
	}
	for _, d := range durations {
		if d.d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.d.Duration)
		}
	}
	if _, _, err := net.ParseCIDR(c.Feed.WatchedNetwork); err != nil {
		return fmt.Errorf("feed.watched_network: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}

// WriteExample writes cfg to path, as YAML for .yaml/.yml and TOML otherwise.
// An existing file is never overwritten.
func WriteExample(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		buf.WriteString("# sentry configuration\n")
		buf.Write(data)
	default:
		buf.WriteString("# sentry configuration\n\n")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
