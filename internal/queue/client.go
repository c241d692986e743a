package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arekbor/helpdesk/internal/config"
)

// Client is the producer half of the pipeline.
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient builds a producer over the shared Redis instance. maxRetry is
// the bounded redelivery count for failed imports (JOB_RETRY_ATTEMPTS).
func NewClient(cfg config.RedisConfig, maxRetry int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		maxRetry: maxRetry,
	}
}

func (c *Client) Close() error { return c.client.Close() }

// EnqueueCSVImport submits an import task. Completed tasks are discarded
// from the broker (no retention); the jobs row is the durable record.
func (c *Client) EnqueueCSVImport(p CSVImportPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(TypeCSVImport, data)
	_, err = c.client.Enqueue(task,
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeCSVImport, err)
	}
	return nil
}
