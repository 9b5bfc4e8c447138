package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"homznspace/backend/internal/models"
)

// DirectDispatcher delivers notifications inline on the calling goroutine.
type DirectDispatcher struct {
	processor *TaskProcessor
}

func NewDirectDispatcher(processor *TaskProcessor) *DirectDispatcher {
	return &DirectDispatcher{processor: processor}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, payload models.EmailTaskPayload) error {
	return d.processor.Deliver(ctx, payload)
}

// enqueuer is the part of *asynq.Client the queue dispatcher needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands notifications to the background worker through asynq.
type QueueDispatcher struct {
	client enqueuer
}

func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, payload models.EmailTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	task := asynq.NewTask(TypeEmailDelivery, body, asynq.Queue(QueueNotifications), asynq.MaxRetry(5))
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}
