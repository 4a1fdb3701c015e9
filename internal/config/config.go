// Package config handles the viewer's global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/ppi/config.yml.
type Config struct {
	Addr              string        `yaml:"addr"`
	LogLevel          string        `yaml:"log_level"`
	Layout            string        `yaml:"layout"`
	SearchDelay       time.Duration `yaml:"search_delay"`
	LookupDelay       time.Duration `yaml:"lookup_delay"`
	CSVDelay          time.Duration `yaml:"csv_delay"`
	RateLimit         float64       `yaml:"rate_limit"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	NotificationLimit int           `yaml:"notification_limit"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "ppi"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// Environment variables that override file values.
	EnvConfigPath = "PPI_CONFIG"
	EnvAddr       = "PPI_ADDR"
	EnvLogLevel   = "PPI_LOG_LEVEL"
)

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"disable", "fatal", "error", "warn", "info", "debug"}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:              "127.0.0.1:8080",
		LogLevel:          "info",
		Layout:            "preset",
		SearchDelay:       1500 * time.Millisecond,
		LookupDelay:       1500 * time.Millisecond,
		CSVDelay:          2000 * time.Millisecond,
		RateLimit:         2,
		MaxUploadBytes:    10 << 20,
		NotificationLimit: 50,
	}
}

var cache *Config

// Path returns the path to the config file. PPI_CONFIG wins, then
// XDG_CONFIG_HOME, then ~/.config.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandTilde(p)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file over the defaults and applies environment
// overrides. A missing file is not an error. The result is cached.
func Load() (*Config, error) {
	if cache != nil {
		return cache, nil
	}

	cfg := Default()
	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.Addr = GetConfigValue(EnvAddr, cfg.Addr)
	cfg.LogLevel = GetConfigValue(EnvLogLevel, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache = cfg
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	cache = nil
}

// GetConfigValue returns the environment value of key if set, otherwise
// fallback.
func GetConfigValue(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks field ranges. Layout names are checked by the renderer.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("%w: log_level %q (valid: %v)", ErrInvalid, c.LogLevel, ValidLogLevels)
	}
	if c.SearchDelay < 0 || c.LookupDelay < 0 || c.CSVDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalid)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalid)
	}
	if c.NotificationLimit <= 0 {
		return fmt.Errorf("%w: notification_limit must be positive", ErrInvalid)
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if level == l {
			return true
		}
	}
	return false
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
