package app

import (
	"log/slog"

	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/platform/cache"
	"github.com/xe-erp/peppol-web/internal/usermenu"
)

// RedisOptions returns the Redis settings shared by sessions and jobs.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// NewBackend builds the ERP backend client.
func NewBackend(cfg *Config, logger *slog.Logger) *odoo.Client {
	return odoo.NewClient(cfg.OdooURL, cfg.OdooDB, cfg.OdooTimeout, logger)
}

// NewUserMenu builds the user menu with the configured entries pruned.
func NewUserMenu(cfg *Config) (*usermenu.Registry, error) {
	return usermenu.New(usermenu.DefaultItems(cfg.OdooURL), cfg.UserMenuExclude...)
}
