package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xe-erp/peppol-web/internal/shared"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

type enqueueCall struct {
	taskType, triggeredBy string
}

type stubEnqueuer struct {
	calls []enqueueCall
	err   error
}

func (s *stubEnqueuer) EnqueueSync(ctx context.Context, taskType, triggeredBy string) (*asynq.TaskInfo, error) {
	s.calls = append(s.calls, enqueueCall{taskType, triggeredBy})
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Type: taskType, Queue: QueueDefault}, nil
}

func serve(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthReportsQueue(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1, Failed: 2}}, nil, nil)
	rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Retry: 1, Failed: 2}, body)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := serve(t, NewHandler(nil, nil, nil), httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"archived":0,"failed_today":0}`, rr.Body.String())
}

func TestHealthQueueError(t *testing.T) {
	rr := serve(t, NewHandler(stubInspector{err: errors.New("redis down")}, nil, nil), httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRunEnqueuesSync(t *testing.T) {
	enq := &stubEnqueuer{}
	req := httptest.NewRequest(http.MethodPost, "/jobs/peppol:receive_bills/run", nil)
	sess := &shared.Session{ID: "s"}
	sess.SetBackendLogin(shared.BackendLogin{SessionID: "sid", UID: 2, Login: "admin"})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rr := serve(t, NewHandler(nil, enq, nil), req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"id":"task-1","task":"peppol:receive_bills","queue":"default"}`, rr.Body.String())
	assert.Equal(t, []enqueueCall{{TaskPeppolReceiveBills, "web:admin"}}, enq.calls)
}

func TestRunRejectsUnknownTask(t *testing.T) {
	enq := &stubEnqueuer{}
	rr := serve(t, NewHandler(nil, enq, nil), httptest.NewRequest(http.MethodPost, "/jobs/analytics:warmup/run", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, enq.calls)
}

func TestRunQueueDown(t *testing.T) {
	rr := serve(t, NewHandler(nil, &stubEnqueuer{err: errors.New("redis down")}, nil), httptest.NewRequest(http.MethodPost, "/jobs/peppol:status_refresh/run", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(t, NewHandler(nil, nil, nil), httptest.NewRequest(http.MethodPost, "/jobs/peppol:status_refresh/run", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewWorkerRejectsUnknownHandler(t *testing.T) {
	_, err := NewWorker(WorkerConfig{Handlers: []TaskHandler{{Type: "analytics:warmup", Handler: func(context.Context, *asynq.Task) error { return nil }}}})
	assert.Error(t, err)
}
