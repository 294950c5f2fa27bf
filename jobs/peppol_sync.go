package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/xe-erp/peppol-web/internal/jobs"
	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/peppol"
)

// Sessions opens and closes backend sessions for the service account.
type Sessions interface {
	Authenticate(ctx context.Context, login, password string) (odoo.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// SyncJob runs the Peppol list actions outside of a browser session, using a
// dedicated backend account.
type SyncJob struct {
	Sessions Sessions
	Connect  peppol.Connector
	Login    string
	Password string
	Group    string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle executes one sync task.
func (j *SyncJob) Handle(ctx context.Context, task *asynq.Task) (resultErr error) {
	if j == nil || j.Sessions == nil || j.Connect == nil {
		return errors.New("peppol sync: dependencies not configured")
	}
	if j.Login == "" {
		return fmt.Errorf("peppol sync: service account not configured: %w", asynq.SkipRetry)
	}
	var payload SyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if !IsSyncTask(task.Type()) {
		return fmt.Errorf("peppol sync: unsupported task %q: %w", task.Type(), asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(task.Type())
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	sess, err := j.Sessions.Authenticate(ctx, j.Login, j.Password)
	if err != nil {
		if errors.Is(err, odoo.ErrInvalidCredentials) {
			return fmt.Errorf("peppol sync: service login rejected: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("peppol sync: authenticate: %w", err)
	}
	defer func() {
		if err := j.Sessions.Logout(context.WithoutCancel(ctx), sess.ID); err != nil {
			j.log().Warn("peppol sync logout", slog.Any("error", err))
		}
	}()

	gw := j.Connect.Open(sess.ID, j.Group)
	enabled, err := gw.IsPeppolEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		tracker.Skip()
		j.log().Info("peppol disabled for company, skipping", slog.String("task", task.Type()))
		return nil
	}

	switch task.Type() {
	case TaskPeppolStatusRefresh:
		if err := gw.FetchInvoiceStatus(ctx); err != nil {
			return err
		}
	case TaskPeppolReceiveBills:
		before, err := gw.CountMoves(ctx, peppol.KindBills)
		if err != nil {
			return err
		}
		if err := gw.ReceivePurchaseInvoices(ctx); err != nil {
			return err
		}
		after, err := gw.CountMoves(ctx, peppol.KindBills)
		if err != nil {
			return err
		}
		j.Metrics.AddFetched(task.Type(), after-before)
		j.log().Info("peppol bills received", slog.Int("new", after-before))
	}
	j.log().Info("peppol sync done", slog.String("task", task.Type()), slog.String("triggered_by", payload.TriggeredBy))
	return nil
}

func (j *SyncJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
