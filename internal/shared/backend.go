package shared

import "errors"

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// BackendLogin is the ERP backend identity attached to a web session.
type BackendLogin struct {
	SessionID string `json:"session_id"`
	UID       int64  `json:"uid"`
	Name      string `json:"name"`
	Login     string `json:"login"`
}

// SetBackendLogin binds the backend session to the web session.
func (s *Session) SetBackendLogin(login BackendLogin) {
	s.backend = &login
	s.dirty = true
}

// BackendLogin returns the bound backend identity. ok is false for
// anonymous sessions.
func (s *Session) BackendLogin() (BackendLogin, bool) {
	if s == nil || s.backend == nil || s.backend.SessionID == "" {
		return BackendLogin{}, false
	}
	return *s.backend, true
}

// ClearBackendLogin drops the backend identity from the session.
func (s *Session) ClearBackendLogin() {
	if s == nil || s.backend == nil {
		return
	}
	s.backend = nil
	s.dirty = true
}
