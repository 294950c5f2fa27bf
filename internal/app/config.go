package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"55s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// PGDSN is optional; without it the audit log and duplicate-submit
	// protection are disabled.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	OdooURL             string        `envconfig:"ODOO_URL" default:"http://127.0.0.1:8069"`
	OdooDB              string        `envconfig:"ODOO_DB" required:"true"`
	OdooTimeout         time.Duration `envconfig:"ODOO_TIMEOUT" default:"45s"`
	OdooServiceLogin    string        `envconfig:"ODOO_SERVICE_LOGIN"`
	OdooServicePassword string        `envconfig:"ODOO_SERVICE_PASSWORD"`

	PeppolGroup    string `envconfig:"PEPPOL_GROUP" default:"xe_account_peppol.group_peppol_invoice"`
	PeppolSyncCron string `envconfig:"PEPPOL_SYNC_CRON" default:"0 */2 * * *"`
	ListPageSize   int    `envconfig:"LIST_PAGE_SIZE" default:"40"`
	// ActionRateLimit caps Peppol button submissions per user and minute.
	ActionRateLimit int `envconfig:"ACTION_RATE_LIMIT" default:"20"`

	UserMenuExclude []string `envconfig:"USER_MENU_EXCLUDE" default:"documentation,support,shortcuts,odoo_account"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.OdooURL == "" {
		return nil, errors.New("odoo url must be provided")
	}
	if cfg.OdooDB == "" {
		return nil, errors.New("odoo database must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// HasServiceAccount reports whether background calls can authenticate.
func (c *Config) HasServiceAccount() bool {
	return c != nil && c.OdooServiceLogin != "" && c.OdooServicePassword != ""
}
