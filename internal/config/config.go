// Package config loads server configuration from an optional YAML file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "15m" parse.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds everything the server needs at startup.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// DatabasePath is the SQLite database file.
	DatabasePath string `yaml:"database_path"`

	// RedisAddr enables the content/progress cache when non-empty.
	RedisAddr string `yaml:"redis_addr"`

	// ContentCacheTTL bounds how long extracted book text stays cached.
	ContentCacheTTL Duration `yaml:"content_cache_ttl"`

	// RateLimit caps writes per client IP within the window.
	RateLimit struct {
		Max    int      `yaml:"max"`
		Window Duration `yaml:"window"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when no file or env is present.
func Default() Config {
	cfg := Config{
		ListenAddr:      ":8080",
		DatabasePath:    "bookclub.db",
		ContentCacheTTL: Duration(15 * time.Minute),
	}
	cfg.RateLimit.Max = 30
	cfg.RateLimit.Window = Duration(time.Minute)
	return cfg
}

// Load reads the YAML file at path over the defaults, then applies env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	return cfg, nil
}
