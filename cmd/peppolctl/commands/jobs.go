package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/xe-erp/peppol-web/jobs"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueReader interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for the sync tasks.
type JobsCLI struct {
	client    taskEnqueuer
	inspector queueReader
}

// NewJobsCLI initialises the helpers against the configured Redis.
func NewJobsCLI(opts asynq.RedisClientOpt) *JobsCLI {
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	if c.client != nil {
		err = errors.Join(err, c.client.Close())
	}
	return err
}

// Trigger enqueues a sync task by name.
func (c *JobsCLI) Trigger(ctx context.Context, name, triggeredBy string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	if !jobs.IsSyncTask(name) {
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	task, err := jobs.NewSyncTask(name, triggeredBy)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Failed    int
}

// InspectQueue reports the default queue counters.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Failed = info.Failed
	}
	return stats, nil
}

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background sync tasks",
	}

	var triggeredBy string
	trigger := &cobra.Command{
		Use:       "trigger <task>",
		Short:     "Enqueue a sync task now",
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobs.SyncTaskTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := NewJobsCLI(cfg.RedisOptions().AsynqOpt())
			defer cli.Close()
			info, err := cli.Trigger(cmd.Context(), args[0], triggeredBy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	trigger.Flags().StringVar(&triggeredBy, "by", "peppolctl", "name recorded in the task payload")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := NewJobsCLI(cfg.RedisOptions().AsynqOpt())
			defer cli.Close()
			st, err := cli.InspectQueue()
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func printStats(out io.Writer, st QueueStats) {
	t := newTable(out, "Queue", "Pending", "Active", "Scheduled", "Retry", "Failed")
	t.AppendRow(table.Row{st.Queue, st.Pending, st.Active, st.Scheduled, st.Retry, st.Failed})
	t.Render()
}
