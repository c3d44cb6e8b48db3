// Package config loads service settings from environment variables, with an
// optional YAML file overlay for the CLI.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all core settings.
type Config struct {
	// DBPath is the local SQLite database location.
	DBPath string `yaml:"db_path"`

	// DeviceID scopes this installation's vote confirmations.
	DeviceID string `yaml:"device_id"`

	// RemoteBaseURL is the hazard service REST endpoint. Empty disables
	// the remote store (local-only operation).
	RemoteBaseURL string `yaml:"remote_base_url"`

	// RemoteTimeout bounds each remote request.
	RemoteTimeout time.Duration `yaml:"remote_timeout"`

	// KafkaBrokers and KafkaTopic configure the change-notification feed.
	// Empty brokers disable the feed.
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	KafkaGroupID string   `yaml:"kafka_group_id"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	timeoutStr := envOrDefault("GLASSWATCH_REMOTE_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid GLASSWATCH_REMOTE_TIMEOUT %q", timeoutStr)
	}

	deviceID := envOrDefault("GLASSWATCH_DEVICE_ID", "")

	cfg := &Config{
		DBPath:        envOrDefault("GLASSWATCH_DB", "glasswatch.db"),
		DeviceID:      deviceID,
		RemoteBaseURL: envOrDefault("GLASSWATCH_REMOTE_URL", ""),
		RemoteTimeout: timeout,
		KafkaBrokers:  parseBrokers(envOrDefault("GLASSWATCH_KAFKA_BROKERS", "")),
		KafkaTopic:    envOrDefault("GLASSWATCH_KAFKA_TOPIC", "hazard-changes"),
		KafkaGroupID:  envOrDefault("GLASSWATCH_KAFKA_GROUP", "glasswatch-"+deviceID),
		LogLevel:      envOrDefault("GLASSWATCH_LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("GLASSWATCH_LOG_FORMAT", "text"),
	}
	return cfg, nil
}

// LoadFile overlays YAML settings from path on top of the environment
// configuration. File values win where set.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
