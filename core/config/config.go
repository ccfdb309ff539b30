// Package config loads the bot configuration from YAML with an environment overlay.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Normalize.
var ErrInvalid = errors.New("invalid config")

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds accepted by rate_limit.exclude_updates.
const (
	UpdateCallback = "callback"
	UpdateMessage  = "message"
)

// Config is the whole bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
}

// TelegramConfig carries the bot token and the single operator allowed to use it.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// Zero selects the transport default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	// KeysOrder is a comma separated list of leading keys.
	KeysOrder string `yaml:"keys_order"`
	// DebugSample is "n/d"; "0/0" logs every sampled debug line.
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	Profile     string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig throttles updates per user. Kinds listed in ExcludeUpdates are never throttled.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// AuditConfig switches the PostgreSQL operation journal on.
type AuditConfig struct {
	Enabled  bool           `yaml:"enabled" envconfig:"AUDIT_ENABLED"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

// Load reads path, applies environment overrides and normalizes the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize validates cfg and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}
	return errors.Join(
		cfg.Telegram.normalize(cfg.Webhook),
		cfg.RateLimit.normalize(),
		cfg.Audit.normalize(),
	)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (t *TelegramConfig) normalize(wh WebhookConfig) error {
	if blank(t.Token) {
		return invalid("telegram.token is required")
	}
	if t.AdminID <= 0 {
		return invalid("telegram.admin_id must be a positive user id")
	}

	mode := strings.ToLower(strings.TrimSpace(t.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		if t.LongPollTimeoutSeconds < 0 {
			return invalid("telegram.longpoll_timeout_seconds must not be negative")
		}
		mode = RunModeLongpoll
	case RunModeWebhook:
		switch {
		case blank(wh.URL):
			return invalid("webhook.url is required in webhook mode")
		case blank(wh.Listen):
			return invalid("webhook.listen is required in webhook mode")
		case wh.Port <= 0:
			return invalid("webhook.port must be positive in webhook mode")
		}
	default:
		return invalid("telegram.run_mode %q is not one of webhook, longpoll", t.RunMode)
	}
	t.RunMode = mode
	return nil
}

func (r *RateLimitConfig) normalize() error {
	kinds := []string{UpdateCallback, UpdateMessage}
	for i, v := range r.ExcludeUpdates {
		kind := strings.ToLower(strings.TrimSpace(v))
		if kind != "" && !slices.Contains(kinds, kind) {
			return invalid("rate_limit.exclude_updates has %q, want callback or message", v)
		}
		r.ExcludeUpdates[i] = kind
	}
	return nil
}

func (a *AuditConfig) normalize() error {
	if !a.Enabled {
		return nil
	}
	db := &a.Database
	if blank(db.Host) || blank(db.Name) {
		return invalid("audit.database.host and audit.database.name are required with audit enabled")
	}
	db.Port = cmp.Or(db.Port, "5432")
	db.SSLMode = cmp.Or(db.SSLMode, "disable")
	db.MigrationsDir = cmp.Or(db.MigrationsDir, "migrations")
	if db.MaxConnections <= 0 {
		db.MaxConnections = 2
	}
	return nil
}

