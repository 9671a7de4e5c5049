package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete configuration
type Config struct {
	Stream  StreamConfig  `toml:"stream" yaml:"stream"`
	Feed    FeedConfig    `toml:"feed" yaml:"feed"`
	Monitor MonitorConfig `toml:"monitor" yaml:"monitor"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// StreamConfig controls the alert stream client
type StreamConfig struct {
	Address              string   `toml:"address" yaml:"address"`
	MaxReconnectAttempts int      `toml:"max_reconnect_attempts" yaml:"max_reconnect_attempts"`
	ReconnectBackoff     Duration `toml:"reconnect_backoff" yaml:"reconnect_backoff"` // fixed, not exponential
	HandshakeTimeout     Duration `toml:"handshake_timeout" yaml:"handshake_timeout"`
	// A caller-initiated connect starts from a fresh attempt budget when set.
	ResetAttemptsOnConnect bool `toml:"reset_attempts_on_connect" yaml:"reset_attempts_on_connect"`
}

// FeedConfig controls the demo alert feed served by `sentry serve`
type FeedConfig struct {
	Listen         string   `toml:"listen" yaml:"listen"`
	Interface      string   `toml:"interface" yaml:"interface"`             // display only
	WatchedNetwork string   `toml:"watched_network" yaml:"watched_network"` // CIDR of the tethered device
	Blocklist      string   `toml:"blocklist" yaml:"blocklist"`
	Interval       Duration `toml:"interval" yaml:"interval"`
}

// MonitorConfig controls the simulated dashboard session
type MonitorConfig struct {
	Tick          Duration `toml:"tick" yaml:"tick"`
	BannerTimeout Duration `toml:"banner_timeout" yaml:"banner_timeout"`
}

// LogConfig controls logging and the rotating log file
type LogConfig struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	NoColor    bool   `toml:"no_color" yaml:"no_color"` // plain level names on the console
}

// Duration is a time.Duration that reads from and writes to "3s" style text.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML accepts the same text form as TOML.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp" // Fallback if home dir cannot be determined
	}

	return &Config{
		Stream: StreamConfig{
			Address:                "ws://localhost:8000/ws",
			MaxReconnectAttempts:   5,
			ReconnectBackoff:       Duration{3 * time.Second},
			HandshakeTimeout:       Duration{5 * time.Second},
			ResetAttemptsOnConnect: true,
		},
		Feed: FeedConfig{
			Listen:         ":8000",
			Interface:      "usb0",
			WatchedNetwork: "192.168.42.0/24", // common Android USB tethering range
			Blocklist:      "blocklist.txt",
			Interval:       Duration{2 * time.Second},
		},
		Monitor: MonitorConfig{
			Tick:          Duration{10 * time.Second},
			BannerTimeout: Duration{5 * time.Second},
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(homeDir, ".sentry", "logs", "sentry.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultConfigPath is the user config consulted when no path is given.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	return filepath.Join(homeDir, ".config", "sentry", "config.toml")
}

// ExpandPath expands ~ in paths to home directory
func ExpandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return homeDir
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
