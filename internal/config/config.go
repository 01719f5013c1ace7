// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xonecas/parley/internal/constants"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Poll    PollConfig    `toml:"poll"`
	Chat    ChatConfig    `toml:"chat"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
	Listen  ListenConfig  `toml:"listen"`
}

// ServerConfig holds settings for talking to the remote chat service.
type ServerConfig struct {
	URL            string   `toml:"url"`
	RequestTimeout Duration `toml:"request_timeout"`
	RateLimit      float64  `toml:"rate_limit"`
	RateBurst      int      `toml:"rate_burst"`
}

// PollConfig holds polling settings.
type PollConfig struct {
	Interval Duration `toml:"interval"`
}

// ChatConfig holds chat session defaults.
type ChatConfig struct {
	Name string `toml:"name"`
}

// HistoryConfig controls the local transcript archive.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// ListenConfig holds settings for the reference chat server.
type ListenConfig struct {
	Addr          string   `toml:"addr"`
	RosterTimeout Duration `toml:"roster_timeout"`
}

// Duration is a time.Duration that decodes from strings like "1s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080",
			RequestTimeout: Duration{constants.DefaultRequestTimeout},
			RateLimit:      10.0,
			RateBurst:      5,
		},
		Poll: PollConfig{
			Interval: Duration{constants.DefaultPollInterval},
		},
		History: HistoryConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level: "info",
		},
		Listen: ListenConfig{
			Addr:          ":8080",
			RosterTimeout: Duration{constants.DefaultRosterTimeout},
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)
	cfg.normalize()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARLEY_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}

	if v := os.Getenv("PARLEY_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Poll.Interval = Duration{d}
		}
	}

	if v := os.Getenv("PARLEY_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RequestTimeout = Duration{d}
		}
	}

	if v := os.Getenv("PARLEY_NAME"); v != "" {
		cfg.Chat.Name = v
	}

	if v := os.Getenv("PARLEY_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History.Enabled = b
		}
	}

	if v := os.Getenv("PARLEY_LISTEN_ADDR"); v != "" {
		cfg.Listen.Addr = v
	}

	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	if c.Poll.Interval.Duration <= 0 {
		c.Poll.Interval = Duration{constants.DefaultPollInterval}
	}
	if c.Server.RequestTimeout.Duration <= 0 {
		c.Server.RequestTimeout = Duration{constants.DefaultRequestTimeout}
	}
	if c.Listen.RosterTimeout.Duration <= 0 {
		c.Listen.RosterTimeout = Duration{constants.DefaultRosterTimeout}
	}
}

// DataDir returns the path to the Parley data directory (~/.parley).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
