package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xe-erp/peppol-web/internal/app"
	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/internal/shared"
	"github.com/xe-erp/peppol-web/jobs"
)

type scriptedInvoker struct {
	counts  []int
	enabled bool
	err     error
	methods []string
}

func (s *scriptedInvoker) Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error) {
	s.methods = append(s.methods, call.Method)
	if s.err != nil {
		return nil, s.err
	}
	switch call.Method {
	case "search_count":
		n := s.counts[0]
		s.counts = s.counts[1:]
		return json.Marshal(n)
	case peppol.MethodIsPeppolEnabled:
		return json.Marshal(s.enabled)
	}
	return json.RawMessage("null"), nil
}

func TestRunActionReceiveBills(t *testing.T) {
	inv := &scriptedInvoker{counts: []int{4, 7}}
	out := new(bytes.Buffer)

	require.NoError(t, runAction(context.Background(), "receive-bills", peppol.NewGateway(inv, ""), out))

	assert.Equal(t, "received 3 bill(s)\n", out.String())
	assert.Equal(t, []string{"search_count", peppol.MethodReceivePurchaseInvoices, "search_count"}, inv.methods)
}

func TestRunActionFetchStatus(t *testing.T) {
	inv := &scriptedInvoker{}
	out := new(bytes.Buffer)

	require.NoError(t, runAction(context.Background(), "fetch-status", peppol.NewGateway(inv, ""), out))

	assert.Equal(t, []string{peppol.MethodFetchAllEDIStatus}, inv.methods)
	assert.Contains(t, out.String(), "refreshed")
}

func TestRunActionPeppolEnabled(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, runAction(context.Background(), "peppol-enabled", peppol.NewGateway(&scriptedInvoker{enabled: true}, ""), out))
	assert.Equal(t, "peppol enabled: true\n", out.String())
}

func TestRunActionErrors(t *testing.T) {
	err := runAction(context.Background(), "nope", peppol.NewGateway(&scriptedInvoker{}, ""), new(bytes.Buffer))
	assert.ErrorIs(t, err, ErrUnknownAction)

	backendErr := &odoo.RPCError{Code: 200, Message: "Odoo Server Error", Detail: "Peppol is not configured"}
	err = runAction(context.Background(), "fetch-status", peppol.NewGateway(&scriptedInvoker{err: backendErr}, ""), new(bytes.Buffer))
	var rpcErr *odoo.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "Peppol is not configured", rpcErr.Detail)
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubQueue struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubQueue) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return s.info, s.err }
func (s stubQueue) Close() error { return nil }

func TestJobsCLITrigger(t *testing.T) {
	enq := &stubEnqueuer{}
	cli := &JobsCLI{client: enq}

	info, err := cli.Trigger(context.Background(), jobs.TaskPeppolReceiveBills, "ops")
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskPeppolReceiveBills, info.Type)
	require.Len(t, enq.tasks, 1)

	var payload jobs.SyncPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "ops", payload.TriggeredBy)

	_, err = cli.Trigger(context.Background(), "analytics:warmup", "ops")
	assert.Error(t, err)
	assert.Len(t, enq.tasks, 1)
}

func TestJobsCLITriggerEnqueueError(t *testing.T) {
	cli := &JobsCLI{client: &stubEnqueuer{err: errors.New("redis down")}}
	_, err := cli.Trigger(context.Background(), jobs.TaskPeppolStatusRefresh, "ops")
	assert.EqualError(t, err, "redis down")
}

func TestJobsCLIInspectQueue(t *testing.T) {
	cli := &JobsCLI{inspector: stubQueue{info: &asynq.QueueInfo{Pending: 2, Active: 1, Failed: 4}}}

	stats, err := cli.InspectQueue()
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 2, Active: 1, Failed: 4}, stats)

	var empty *JobsCLI
	_, err = empty.InspectQueue()
	assert.Error(t, err)
}

func TestMenuCommand(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = &app.Config{OdooURL: "http://erp.local", UserMenuExclude: []string{"documentation", "support", "shortcuts", "odoo_account"}}

	root := rootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"menu"})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "profile")
	assert.Contains(t, text, "log_out")
	assert.NotContains(t, text, "Documentation")
	assert.Contains(t, text, "excluded: documentation, odoo_account, shortcuts, support")
}

func TestCallCommandRejectsUnknownAction(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = &app.Config{OdooURL: "http://erp.local"}

	root := rootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"call", "delete-everything"})
	assert.ErrorIs(t, root.Execute(), ErrUnknownAction)
}

func TestPrintAudit(t *testing.T) {
	out := new(bytes.Buffer)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	printAudit(out, []shared.ActionLog{
		{Actor: "admin", View: "fetch_invoices_tree_btn", Action: "get_sales_invoice", Outcome: "success", At: at},
	})

	assert.Contains(t, out.String(), "2024-03-01T09:30:00Z")
	assert.Contains(t, out.String(), "get_sales_invoice")
}

func TestPrintStatsRendersTable(t *testing.T) {
	out := new(bytes.Buffer)
	printStats(out, QueueStats{Queue: jobs.QueueDefault, Pending: 7, Failed: 2})

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "╭"), text)
	assert.Contains(t, text, "PENDING")
	assert.Contains(t, text, jobs.QueueDefault)
	assert.Contains(t, text, "7")
}

func TestAuditRequiresDatabase(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = &app.Config{}

	root := rootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"audit"})
	assert.ErrorContains(t, root.Execute(), "PG_DSN")
}
