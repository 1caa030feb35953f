package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands environment variables and applies
// environment overrides. An empty path yields a config built from the environment alone.
func Load(path string) (*IngestorConfig, error) {
	var cfg IngestorConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Expand ${VAR} environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*IngestorConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*IngestorConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values.
func applyEnvOverrides(cfg *IngestorConfig) {
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("PROJECT_ID"); v != "" {
		cfg.Database.Warehouse.Name = v
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		cfg.Database.Warehouse.Host = v
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		cfg.Database.Warehouse.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Warehouse.Password = v
	}

	// Must point at a pgpass file. GOOGLE_APPLICATION_CREDENTIALS is not read:
	// on cloud hosts it names a service-account JSON file pgx cannot parse.
	if v := os.Getenv("CREDENTIALS_PATH"); v != "" {
		cfg.Database.Warehouse.PassFile = v
	}
}
