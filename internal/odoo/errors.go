package odoo

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned when a call is attempted without a client.
	ErrNotConfigured = errors.New("odoo: client not configured")
	// ErrInvalidCredentials indicates the backend rejected the login.
	ErrInvalidCredentials = errors.New("odoo: invalid credentials")
	// ErrNoSessionCookie indicates the backend did not hand out a session.
	ErrNoSessionCookie = errors.New("odoo: no session cookie in response")
	// ErrSessionExpired indicates the backend session is no longer valid.
	ErrSessionExpired = errors.New("odoo: session expired")
	// ErrAccessDenied indicates the backend refused the operation.
	ErrAccessDenied = errors.New("odoo: access denied")
)

const (
	codeSessionExpired = 100
	accessErrorName    = "odoo.exceptions.AccessError"
	accessDeniedName   = "odoo.exceptions.AccessDenied"
)

// RPCError carries an error payload returned by the backend.
type RPCError struct {
	Code    int
	Message string
	Name    string
	Detail  string
}

func newRPCError(body *rpcErrorBody) *RPCError {
	return &RPCError{
		Code:    body.Code,
		Message: body.Message,
		Name:    body.Data.Name,
		Detail:  body.Data.Message,
	}
}

func (e *RPCError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("odoo: rpc error %d: %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("odoo: rpc error %d: %s", e.Code, e.Message)
}

// Is maps well-known backend failures onto the package sentinels.
func (e *RPCError) Is(target error) bool {
	switch target {
	case ErrSessionExpired:
		return e.Code == codeSessionExpired
	case ErrAccessDenied:
		return e.Name == accessErrorName || e.Name == accessDeniedName
	}
	return false
}

// HTTPError reports a non-2xx transport response.
type HTTPError struct {
	StatusCode int
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("odoo: %s returned status %d", e.Path, e.StatusCode)
}

// Is treats 401/403 transport responses as access failures.
func (e *HTTPError) Is(target error) bool {
	if target == ErrAccessDenied {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}
