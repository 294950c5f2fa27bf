package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/internal/shared"
)

type groupInvoker struct {
	member bool
	err    error
	calls  []odoo.Call
}

func (g *groupInvoker) Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error) {
	g.calls = append(g.calls, call)
	if g.err != nil {
		return nil, g.err
	}
	return json.Marshal(g.member)
}

func requestWithSession(t *testing.T, loggedIn bool) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	sm := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if loggedIn {
		sess.SetBackendLogin(shared.BackendLogin{SessionID: "sid", UID: 2, Name: "Admin"})
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequireLogin(t *testing.T) {
	m := Middleware{}

	res := httptest.NewRecorder()
	m.RequireLogin(okHandler).ServeHTTP(res, requestWithSession(t, false))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next=%2Fjobs%2Fhealth", res.Header().Get("Location"))

	res = httptest.NewRecorder()
	m.RequireLogin(okHandler).ServeHTTP(res, requestWithSession(t, true))
	assert.Equal(t, http.StatusNoContent, res.Code)
}

func TestRequireGroup(t *testing.T) {
	cases := []struct {
		name   string
		inv    *groupInvoker
		status int
	}{
		{name: "member", inv: &groupInvoker{member: true}, status: http.StatusNoContent},
		{name: "not member", inv: &groupInvoker{}, status: http.StatusForbidden},
		{name: "backend error", inv: &groupInvoker{err: errors.New("boom")}, status: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var bound string
			m := Middleware{Connect: func(sessionID string) peppol.Invoker {
				bound = sessionID
				return tc.inv
			}}
			res := httptest.NewRecorder()
			m.RequireGroup("base.group_system")(okHandler).ServeHTTP(res, requestWithSession(t, true))

			assert.Equal(t, tc.status, res.Code)
			assert.Equal(t, "sid", bound)
			require.Len(t, tc.inv.calls, 1)
			assert.Equal(t, peppol.HasGroupCall("base.group_system"), tc.inv.calls[0])
		})
	}
}

func TestRequireGroupAnonymous(t *testing.T) {
	inv := &groupInvoker{member: true}
	m := Middleware{Connect: func(string) peppol.Invoker { return inv }}

	res := httptest.NewRecorder()
	m.RequireGroup("base.group_system")(okHandler).ServeHTTP(res, requestWithSession(t, false))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Empty(t, inv.calls)
}
