package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPeppolStatusRefresh refreshes the Peppol status of sent invoices.
	TaskPeppolStatusRefresh = "peppol:status_refresh"
	// TaskPeppolReceiveBills pulls incoming Peppol bills.
	TaskPeppolReceiveBills = "peppol:receive_bills"
)

// SyncTaskTypes lists the tasks the worker serves.
var SyncTaskTypes = []string{TaskPeppolStatusRefresh, TaskPeppolReceiveBills}

// SyncPayload describes who asked for a sync run.
type SyncPayload struct {
	TriggeredBy string    `json:"triggered_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewSyncTask constructs a Peppol sync task. Sync runs are best effort: a
// failed run is not retried and the next cron tick takes over.
func NewSyncTask(taskType, triggeredBy string) (*asynq.Task, error) {
	if !IsSyncTask(taskType) {
		return nil, fmt.Errorf("jobs: unsupported task %q", taskType)
	}
	if triggeredBy == "" {
		triggeredBy = "scheduler"
	}
	body, err := json.Marshal(SyncPayload{TriggeredBy: triggeredBy, RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault), asynq.MaxRetry(0)), nil
}

// IsSyncTask reports whether taskType is one of the Peppol sync tasks.
func IsSyncTask(taskType string) bool {
	for _, t := range SyncTaskTypes {
		if t == taskType {
			return true
		}
	}
	return false
}
