package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

// ErrClosed is returned by Dequeue once the queue is shut down and drained.
var ErrClosed = errors.New("queue closed")

// Queue hands processing tasks from ingestion to workers with
// at-least-once delivery. A dequeued task stays in flight until Ack;
// tasks stranded in flight by a crash are re-delivered on the next
// RequeueStranded call.
type Queue interface {
	Enqueue(ctx context.Context, task domain.ProcessingTask) error
	Dequeue(ctx context.Context) (domain.ProcessingTask, error)
	Ack(ctx context.Context, task domain.ProcessingTask) error
	RequeueStranded(ctx context.Context) (int, error)

	SetTaskState(ctx context.Context, taskID string, state domain.TaskState, result json.RawMessage, taskErr string) error
	TaskStatus(ctx context.Context, taskID string) (domain.TaskStatus, error)

	Ping(ctx context.Context) error
}

func encodeTask(task domain.ProcessingTask) (string, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func decodeTask(payload string) (domain.ProcessingTask, error) {
	var task domain.ProcessingTask
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return domain.ProcessingTask{}, err
	}

	return task, nil
}
