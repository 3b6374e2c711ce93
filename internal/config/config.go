// Package config loads the server configuration from environment variables.
// A .env file, when present, is loaded by the entrypoint before FromEnv
// runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults used when the environment leaves a knob unset.
const (
	DefaultPort       = 8080
	DefaultSessionTTL = 12 * time.Hour
)

// Config holds the server's runtime configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// SeedFile is an optional YAML file overriding the built-in demo
	// dataset. Empty means the built-in seed.
	SeedFile string

	// SessionTTL is how long issued sessions stay valid.
	SessionTTL time.Duration
}

// FromEnv reads configuration from the environment, applying defaults for
// unset values and rejecting malformed ones.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       DefaultPort,
		SeedFile:   os.Getenv("SEED_FILE"),
		SessionTTL: DefaultSessionTTL,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL %q", raw)
		}
		cfg.SessionTTL = ttl
	}

	return cfg, nil
}
