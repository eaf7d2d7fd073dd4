package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is looked up in the working directory when no
// config file is given.
const DefaultConfigFilename = "jftf-setup.yaml"

// Environment variables that override secrets from the file or the defaults.
const (
	EnvDatabasePassword  = "JFTF_DB_PASSWORD"
	EnvSuperuserPassword = "JFTF_SUPERUSER_PASSWORD"
	EnvRabbitMQPassword  = "JFTF_RABBITMQ_PASSWORD"
)

// Load builds the configuration from the defaults, an optional YAML file and
// the environment, then validates it.
//
// An empty path falls back to DefaultConfigFilename; a missing default file
// is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parseInto(cfg, data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// built-in defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromBytes overlays YAML data on the defaults and validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := parseInto(cfg, data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// parseInto decodes YAML over an already populated Config, so fields absent
// from the document keep their defaults.
func parseInto(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides credentials from the environment when set.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabasePassword); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv(EnvSuperuserPassword); v != "" {
		cfg.Django.SuperuserPassword = v
	}
	if v := os.Getenv(EnvRabbitMQPassword); v != "" {
		cfg.RabbitMQ.Password = v
	}
}
