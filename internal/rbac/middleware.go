// Package rbac gates routes on the backend identity bound to the session.
package rbac

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/internal/shared"
)

// LoginPath is where anonymous sessions are sent.
const LoginPath = "/auth/login"

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Connect peppol.Connector
	Logger  *slog.Logger
}

// RequireLogin redirects sessions without a backend login to the login page.
func (m Middleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.SessionFromContext(r.Context()).BackendLogin(); !ok {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireGroup ensures the session user belongs to the backend group. The
// membership is asked to the backend on every request.
func (m Middleware) RequireGroup(group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, ok := shared.SessionFromContext(r.Context()).BackendLogin()
			if !ok {
				redirectToLogin(w, r)
				return
			}
			member, err := m.Connect.Open(login.SessionID, group).UserHasGroup(r.Context())
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require group", slog.String("group", group), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
				return
			}
			if !member {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if r.Method == http.MethodGet && r.URL.Path != "" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
