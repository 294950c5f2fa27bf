package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/xe-erp/peppol-web/internal/jobs"
	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/peppol"
)

type serviceBackend struct {
	mu        sync.Mutex
	calls     []odoo.Call
	loggedOut []string
	authErr   error
	enabled   bool
	counts    []int
	actionErr error
}

func (b *serviceBackend) Authenticate(ctx context.Context, login, password string) (odoo.Session, error) {
	if b.authErr != nil {
		return odoo.Session{}, b.authErr
	}
	return odoo.Session{ID: "svc-sid", UID: 5, Login: login}, nil
}

func (b *serviceBackend) Logout(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedOut = append(b.loggedOut, sessionID)
	return nil
}

func (b *serviceBackend) Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	switch call.Method {
	case peppol.MethodIsPeppolEnabled:
		return json.Marshal(b.enabled)
	case peppol.MethodFetchAllEDIStatus, peppol.MethodReceivePurchaseInvoices:
		if b.actionErr != nil {
			return nil, b.actionErr
		}
		return json.RawMessage("true"), nil
	case "search_count":
		n := 0
		if len(b.counts) > 0 {
			n, b.counts = b.counts[0], b.counts[1:]
		}
		return json.Marshal(n)
	}
	return nil, errors.New("unexpected call " + call.String())
}

func (b *serviceBackend) methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Method)
	}
	return out
}

func newSyncJob(b *serviceBackend) *SyncJob {
	return &SyncJob{
		Sessions: b,
		Connect:  func(string) peppol.Invoker { return b },
		Login:    "peppol-bot",
		Password: "secret",
		Metrics:  jobmetrics.NewMetrics(prometheus.NewRegistry()),
	}
}

func syncTask(t *testing.T, taskType string) *asynq.Task {
	t.Helper()
	task, err := NewSyncTask(taskType, "test")
	require.NoError(t, err)
	return task
}

func TestStatusRefreshCallsBackendOnce(t *testing.T) {
	b := &serviceBackend{enabled: true}

	err := newSyncJob(b).Handle(context.Background(), syncTask(t, TaskPeppolStatusRefresh))

	require.NoError(t, err)
	assert.Equal(t, []string{peppol.MethodIsPeppolEnabled, peppol.MethodFetchAllEDIStatus}, b.methods())
	assert.Equal(t, []string{"svc-sid"}, b.loggedOut)
}

func TestReceiveBillsCountsNewDocuments(t *testing.T) {
	b := &serviceBackend{enabled: true, counts: []int{10, 13}}

	err := newSyncJob(b).Handle(context.Background(), syncTask(t, TaskPeppolReceiveBills))

	require.NoError(t, err)
	assert.Equal(t, []string{
		peppol.MethodIsPeppolEnabled,
		"search_count",
		peppol.MethodReceivePurchaseInvoices,
		"search_count",
	}, b.methods())
}

func TestSyncSkipsDisabledCompany(t *testing.T) {
	b := &serviceBackend{enabled: false}

	err := newSyncJob(b).Handle(context.Background(), syncTask(t, TaskPeppolStatusRefresh))

	require.NoError(t, err)
	assert.Equal(t, []string{peppol.MethodIsPeppolEnabled}, b.methods())
	assert.Equal(t, []string{"svc-sid"}, b.loggedOut)
}

func TestSyncRejectedLoginSkipsRetry(t *testing.T) {
	b := &serviceBackend{authErr: odoo.ErrInvalidCredentials}

	err := newSyncJob(b).Handle(context.Background(), syncTask(t, TaskPeppolStatusRefresh))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, b.methods())
}

func TestSyncActionFailure(t *testing.T) {
	b := &serviceBackend{enabled: true, actionErr: &odoo.RPCError{Code: 200, Message: "boom"}}

	err := newSyncJob(b).Handle(context.Background(), syncTask(t, TaskPeppolStatusRefresh))

	var rpcErr *odoo.RPCError
	assert.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, []string{"svc-sid"}, b.loggedOut)
}

func TestSyncWithoutServiceAccount(t *testing.T) {
	job := newSyncJob(&serviceBackend{})
	job.Login = ""

	err := job.Handle(context.Background(), syncTask(t, TaskPeppolStatusRefresh))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewSyncTask(t *testing.T) {
	task, err := NewSyncTask(TaskPeppolReceiveBills, "")
	require.NoError(t, err)
	assert.Equal(t, TaskPeppolReceiveBills, task.Type())

	var payload SyncPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "scheduler", payload.TriggeredBy)
	assert.False(t, payload.RequestedAt.IsZero())

	_, err = NewSyncTask("mail:send", "cli")
	assert.Error(t, err)
}
