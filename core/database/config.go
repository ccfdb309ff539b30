package database

import (
	"fmt"
	"net/url"
	"strings"

	coreconfig "github.com/m3rciful/codesbot/core/config"
)

// Config is the PostgreSQL section of the application config.
type Config = coreconfig.DatabaseConfig

// DSN returns the lib/pq keyword/value connection string.
func DSN(cfg Config) string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		quote(cfg.User), quote(cfg.Password), quote(cfg.Host), quote(cfg.Port), quote(cfg.Name), quote(cfg.SSLMode),
	)
}

// quote wraps a value in single quotes as lib/pq requires for spaces and empties.
func quote(v string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// MigrateURL returns the postgres:// URL golang-migrate expects.
func MigrateURL(cfg Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}
