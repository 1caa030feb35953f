// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A handful of well-known variables (API_TOKEN, PROJECT_ID, CREDENTIALS_PATH, ...)
// override file values, so the ingestor can also run with no file at all.
package config
