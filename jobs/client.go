package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

// Client submits sync tasks to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a Client on redisOpts.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueSync enqueues a Peppol sync task.
func (c *Client) EnqueueSync(ctx context.Context, taskType, triggeredBy string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs: client not configured")
	}
	task, err := NewSyncTask(taskType, triggeredBy)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// Close releases client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
