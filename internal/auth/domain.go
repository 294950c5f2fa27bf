package auth

import (
	"context"

	"github.com/xe-erp/peppol-web/internal/odoo"
)

// Backend verifies credentials against the ERP backend and ends backend
// sessions. *odoo.Client satisfies it.
type Backend interface {
	Authenticate(ctx context.Context, login, password string) (odoo.Session, error)
	Logout(ctx context.Context, sessionID string) error
}
