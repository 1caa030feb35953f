package database

import (
	"fmt"
	"net/url"

	"github.com/rickgao/energy-data/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config.
// When no password is configured the passfile is handed to pgx instead.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	userInfo := url.QueryEscape(cfg.User)
	if cfg.Password != "" {
		// URL-encode password to handle special characters
		userInfo += ":" + url.QueryEscape(cfg.Password)
	}

	connStr := fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)

	if cfg.Password == "" && cfg.PassFile != "" {
		connStr += "&passfile=" + url.QueryEscape(cfg.PassFile)
	}

	return connStr
}
