package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}

	if cfg.Stream.Address != "ws://localhost:8000/ws" {
		t.Errorf("Expected default address 'ws://localhost:8000/ws', got '%s'", cfg.Stream.Address)
	}
	if cfg.Stream.MaxReconnectAttempts != 5 {
		t.Errorf("Expected 5 reconnect attempts, got %d", cfg.Stream.MaxReconnectAttempts)
	}
	if cfg.Stream.ReconnectBackoff.Duration != 3*time.Second {
		t.Errorf("Expected 3s backoff, got %s", cfg.Stream.ReconnectBackoff)
	}
	if cfg.Monitor.BannerTimeout.Duration != 5*time.Second {
		t.Errorf("Expected 5s banner timeout, got %s", cfg.Monitor.BannerTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"expand tilde", "~/test", filepath.Join(homeDir, "test")},
		{"expand tilde only", "~", homeDir},
		{"no expansion needed", "/absolute/path", "/absolute/path"},
		{"empty path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandPath(tt.input)
			if result != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[stream]
address = "ws://10.0.0.2:9000/ws"
reconnect_backoff = "250ms"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Stream.Address != "ws://10.0.0.2:9000/ws" {
		t.Errorf("address = %q", cfg.Stream.Address)
	}
	if cfg.Stream.ReconnectBackoff.Duration != 250*time.Millisecond {
		t.Errorf("backoff = %s, want 250ms", cfg.Stream.ReconnectBackoff)
	}
	// untouched keys keep defaults
	if cfg.Stream.MaxReconnectAttempts != 5 {
		t.Errorf("max attempts = %d, want default 5", cfg.Stream.MaxReconnectAttempts)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
stream:
  max_reconnect_attempts: 2
  handshake_timeout: 1s
feed:
  watched_network: 10.0.0.0/8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Stream.MaxReconnectAttempts != 2 {
		t.Errorf("max attempts = %d, want 2", cfg.Stream.MaxReconnectAttempts)
	}
	if cfg.Stream.HandshakeTimeout.Duration != time.Second {
		t.Errorf("handshake timeout = %s, want 1s", cfg.Stream.HandshakeTimeout)
	}
	if cfg.Feed.WatchedNetwork != "10.0.0.0/8" {
		t.Errorf("watched network = %q", cfg.Feed.WatchedNetwork)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Stream.Address != "ws://localhost:8000/ws" {
		t.Errorf("address = %q", cfg.Stream.Address)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SENTRY_ADDR", "ws://example:1/ws")
	t.Setenv("SENTRY_LOG_LEVEL", "warn")
	t.Setenv("SENTRY_FEED_LISTEN", "127.0.0.1:9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Stream.Address != "ws://example:1/ws" {
		t.Errorf("address = %q", cfg.Stream.Address)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Feed.Listen != "127.0.0.1:9999" {
		t.Errorf("listen = %q", cfg.Feed.Listen)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"negative attempts", func(c *Config) { c.Stream.MaxReconnectAttempts = -1 }, "max_reconnect_attempts"},
		{"zero attempts allowed", func(c *Config) { c.Stream.MaxReconnectAttempts = 0 }, ""},
		{"zero backoff", func(c *Config) { c.Stream.ReconnectBackoff = Duration{} }, "reconnect_backoff"},
		{"bad cidr", func(c *Config) { c.Feed.WatchedNetwork = "192.168.42.0" }, "watched_network"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"warning level", func(c *Config) { c.Log.Level = "warning" }, ""},
		{"upper case level", func(c *Config) { c.Log.Level = "WARN" }, ""},
		{"empty address", func(c *Config) { c.Stream.Address = "" }, "stream.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteExampleRoundTrip(t *testing.T) {
	clearEnv(t)
	for _, name := range []string{"sentry.toml", "sentry.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			src := GetDefaultConfig()
			src.Stream.Address = "ws://roundtrip:1/ws"
			src.Stream.ReconnectBackoff = Duration{1500 * time.Millisecond}

			if err := WriteExample(path, src); err != nil {
				t.Fatalf("WriteExample() error: %v", err)
			}
			if err := WriteExample(path, src); err == nil {
				t.Error("second WriteExample() should refuse to overwrite")
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Stream.Address != "ws://roundtrip:1/ws" {
				t.Errorf("address = %q", cfg.Stream.Address)
			}
			if cfg.Stream.ReconnectBackoff.Duration != 1500*time.Millisecond {
				t.Errorf("backoff = %s", cfg.Stream.ReconnectBackoff)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SENTRY_CONFIG", "SENTRY_ADDR", "SENTRY_LOG_LEVEL", "SENTRY_LOG_FILE", "SENTRY_FEED_LISTEN", "SENTRY_BLOCKLIST"} {
		t.Setenv(k, "")
	}
}
