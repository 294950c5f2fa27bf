package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	backend Backend
}

// NewService constructs a new Service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Authenticate validates login/password credentials with the backend.
func (s *Service) Authenticate(ctx context.Context, login, password string) (shared.BackendLogin, error) {
	if s == nil || s.backend == nil {
		return shared.BackendLogin{}, odoo.ErrNotConfigured
	}
	sess, err := s.backend.Authenticate(ctx, strings.TrimSpace(login), password)
	if err != nil {
		if errors.Is(err, odoo.ErrInvalidCredentials) {
			return shared.BackendLogin{}, shared.ErrInvalidCredentials
		}
		return shared.BackendLogin{}, fmt.Errorf("auth: authenticate: %w", err)
	}
	return shared.BackendLogin{
		SessionID: sess.ID,
		UID:       sess.UID,
		Name:      sess.Name,
		Login:     sess.Login,
	}, nil
}

// EndSession destroys the backend session bound to a web session.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if s == nil || s.backend == nil || sessionID == "" {
		return nil
	}
	return s.backend.Logout(ctx, sessionID)
}
