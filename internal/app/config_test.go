package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xe-erp/peppol-web/internal/usermenu"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("ODOO_DB", "erp")
	t.Setenv("ODOO_URL", "http://erp.test:8069")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "erp", cfg.OdooDB)
	assert.Equal(t, "xe_account_peppol.group_peppol_invoice", cfg.PeppolGroup)
	assert.Equal(t, []string{"documentation", "support", "shortcuts", "odoo_account"}, cfg.UserMenuExclude)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.HasServiceAccount())
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisOptions().Addr)
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("ODOO_DB", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigDotEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("ODOO_DB", "erp")

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	_, err = LoadConfig()
	require.NoError(t, err, "a missing .env is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o600))
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "load .env")
}

func TestNewUserMenuUsesExclusions(t *testing.T) {
	cfg := &Config{OdooURL: "http://erp.test", UserMenuExclude: []string{usermenu.KeySupport}}

	menu, err := NewUserMenu(cfg)
	require.NoError(t, err)

	assert.NotContains(t, menu.Keys(), usermenu.KeySupport)
	assert.Contains(t, menu.Keys(), usermenu.KeyDocumentation)
	item, ok := menu.Get(usermenu.KeyProfile)
	require.True(t, ok)
	assert.Equal(t, "http://erp.test/web#action=base.action_res_users_my", item.Href)
}
