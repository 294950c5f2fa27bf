package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: Peppol is not configured", ErrUpstream), http.StatusBadGateway},
		{fmt.Errorf("moves: %w", ErrForbidden), http.StatusForbidden},
		{ErrConflict, http.StatusConflict},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: bad form", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, httptest.NewRequest(http.MethodPost, "/invoices/fetch-status", nil), tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())

		body := decodeProblem(t, rr)
		assert.Equal(t, tc.status, body.Status)
		assert.Equal(t, "about:blank", body.Type)
		assert.Equal(t, "/invoices/fetch-status", body.Instance)
	}
}

func TestRespondErrorStripsSentinelPrefix(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, fmt.Errorf("%w: Peppol is not configured", ErrUpstream))

	body := decodeProblem(t, rr)
	assert.Equal(t, "Backend Error", body.Title)
	assert.Equal(t, "Peppol is not configured", body.Detail)
	assert.Empty(t, body.Instance)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, fmt.Errorf("dial tcp 10.0.0.1:8069: refused"))

	assert.Empty(t, decodeProblem(t, rr).Detail)
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusAccepted, map[string]int{"pending": 2})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"pending":2}`, rr.Body.String())
}
