// Package config loads the server configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Mount maps a URL route onto a file or directory.
type Mount struct {
	Route string `yaml:"route"`
	Path  string `yaml:"path"`
	// Kind is "file" or "dir".
	Kind string `yaml:"kind"`
}

// Session configures the session cookie and store.
type Session struct {
	CookieName string `yaml:"cookieName"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Telemetry configures the OTLP export target. An empty endpoint
// disables export.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}

// Config is the full server configuration.
type Config struct {
	Name    string `yaml:"name"`
	Addr    string `yaml:"addr"`
	Workers int    `yaml:"workers"`

	// NotFoundPage is an optional HTML file served on unmatched GETs.
	NotFoundPage string `yaml:"notFoundPage"`

	Mounts    []Mount   `yaml:"mounts"`
	Session   Session   `yaml:"session"`
	Log       Log       `yaml:"log"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Name:    "basalt",
		Addr:    ":8080",
		Workers: 4,
		Session: Session{
			CookieName: "SID",
			TTLSeconds: 3600,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile reads and validates the YAML configuration at path. Settings
// absent from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document on top of
// the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first offending setting.
func (cfg Config) Validate() error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if cfg.Session.TTLSeconds < 1 {
		return fmt.Errorf("%w: session ttl must be at least 1 second", ErrInvalidConfig)
	}
	for _, mount := range cfg.Mounts {
		if mount.Path == "" {
			return fmt.Errorf("%w: mount %q needs a path", ErrInvalidConfig, mount.Route)
		}
		switch mount.Kind {
		case "file", "dir":
		default:
			return fmt.Errorf("%w: mount %q kind must be file or dir, got %q", ErrInvalidConfig, mount.Route, mount.Kind)
		}
	}
	return nil
}

// SessionTTL returns the configured session lifetime.
func (cfg Config) SessionTTL() time.Duration {
	return time.Duration(cfg.Session.TTLSeconds) * time.Second
}
