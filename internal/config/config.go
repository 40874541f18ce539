// Package config loads the session-layer configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration for the gateway and CLI.
type Config struct {
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
}

// CoordinatorConfig configures the session client.
type CoordinatorConfig struct {
	// URL is the coordinator WebSocket endpoint.
	URL string `yaml:"url"`
	// PrivateKey is the holder's hex-encoded signing key. Usually left
	// empty in the file and supplied via COORDINATOR_PRIVATE_KEY.
	PrivateKey string `yaml:"private_key"`
	// AppName identifies this application to the coordinator.
	AppName string `yaml:"app_name"`
	// Scope is the requested session scope.
	Scope string `yaml:"scope"`
	// RequestTimeoutSeconds is the default call deadline.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	// ReconnectBaseDelayMS is the base reconnection delay.
	ReconnectBaseDelayMS int `yaml:"reconnect_base_delay_ms"`
	// ReconnectMaxAttempts caps consecutive reconnection attempts.
	ReconnectMaxAttempts int `yaml:"reconnect_max_attempts"`
}

// HTTPConfig configures the gateway's HTTP surface.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Pretty enables human-readable console output.
	Pretty bool `yaml:"pretty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Coordinator: CoordinatorConfig{
			AppName:               "session-layer",
			Scope:                 "console",
			RequestTimeoutSeconds: 30,
			ReconnectBaseDelayMS:  1000,
			ReconnectMaxAttempts:  5,
		},
		HTTP: HTTPConfig{Addr: ":8090"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads the configuration from path, falls back to defaults for
// unset fields, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Coordinator.URL == "" {
		return nil, fmt.Errorf("coordinator.url is required")
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists, otherwise returns defaults
// with environment overrides applied. The URL requirement still holds.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COORDINATOR_URL"); v != "" {
		cfg.Coordinator.URL = v
	}
	if v := os.Getenv("COORDINATOR_PRIVATE_KEY"); v != "" {
		cfg.Coordinator.PrivateKey = v
	}
	if v := os.Getenv("COORDINATOR_APP_NAME"); v != "" {
		cfg.Coordinator.AppName = v
	}
	if v := os.Getenv("COORDINATOR_SCOPE"); v != "" {
		cfg.Coordinator.Scope = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RECONNECT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Coordinator.ReconnectMaxAttempts = n
		}
	}
}

// RequestTimeout returns the configured call deadline as a duration.
func (c CoordinatorConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ReconnectBaseDelay returns the configured base delay as a duration.
func (c CoordinatorConfig) ReconnectBaseDelay() time.Duration {
	return time.Duration(c.ReconnectBaseDelayMS) * time.Millisecond
}
