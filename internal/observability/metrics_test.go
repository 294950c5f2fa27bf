package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestObserveAction(t *testing.T) {
	m := NewMetrics()
	m.ObserveAction("fetch_invoices_tree_btn", "get_sales_invoice", OutcomeSuccess, 120*time.Millisecond)
	m.ObserveAction("fetch_invoices_tree_btn", "get_sales_invoice", OutcomeDuplicate, 0)

	body := scrape(t, m)
	assert.Contains(t, body, `peppolweb_peppol_actions_total{action="get_sales_invoice",outcome="success",view="fetch_invoices_tree_btn"} 1`)
	assert.Contains(t, body, `peppolweb_peppol_actions_total{action="get_sales_invoice",outcome="duplicate",view="fetch_invoices_tree_btn"} 1`)
	assert.Contains(t, body, `peppolweb_backend_call_duration_seconds_count{action="get_sales_invoice"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMiddlewareRecordsRequest(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/invoices")
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `peppolweb_http_requests_total{code="418",method="GET",route="/invoices"} 1`)
	assert.Contains(t, body, `peppolweb_http_request_duration_seconds_bucket{route="/invoices"`)
	assert.Contains(t, body, "peppolweb_http_requests_in_flight 0")
}

func TestMiddlewareImplicitOK(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Contains(t, scrape(t, m), `peppolweb_http_requests_total{code="200",method="GET",route="unmatched"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAction("v", "a", OutcomeFailure, time.Second)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}
