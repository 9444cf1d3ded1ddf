package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

const (
	pendingKey    = "tasks:pending"
	processingKey = "tasks:processing"

	taskKeyPrefix = "task:"

	taskStatusTTL = 24 * time.Hour
	dequeueBlock  = 5 * time.Second
)

// Redis is a reliable list queue: Enqueue pushes onto the pending list,
// Dequeue atomically moves the task onto the processing list, and Ack
// removes it from there. Task states live in per-task hashes with a TTL.
type Redis struct {
	log    *slog.Logger
	client *redis.Client
}

func NewRedis(ctx context.Context, log *slog.Logger, cfg config.Redis) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{
		log:    log,
		client: client,
	}, nil
}

func (q *Redis) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Redis) Enqueue(ctx context.Context, task domain.ProcessingTask) error {
	payload, err := encodeTask(task)
	if err != nil {
		return fmt.Errorf("failed to encode task %q: %w", task.TaskID, err)
	}

	if err := q.SetTaskState(ctx, task.TaskID, domain.TaskStateQueued, nil, ""); err != nil {
		return err
	}

	if err := q.client.LPush(ctx, pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to push task %q: %w", task.TaskID, err)
	}

	return nil
}

func (q *Redis) Dequeue(ctx context.Context) (domain.ProcessingTask, error) {
	for {
		payload, err := q.client.BLMove(ctx, pendingKey, processingKey, "RIGHT", "LEFT", dequeueBlock).Result()
		if err == redis.Nil {
			select {
			case <-ctx.Done():
				return domain.ProcessingTask{}, ctx.Err()
			default:
				continue
			}
		}
		if err != nil {
			return domain.ProcessingTask{}, fmt.Errorf("failed to pop task: %w", err)
		}

		task, err := decodeTask(payload)
		if err != nil {
			// Malformed payloads can never succeed, drop them instead of
			// cycling forever.
			q.log.ErrorContext(ctx, "dropping malformed task payload", slog.Any("error", err))
			q.client.LRem(ctx, processingKey, 1, payload)
			continue
		}

		return task, nil
	}
}

func (q *Redis) Ack(ctx context.Context, task domain.ProcessingTask) error {
	payload, err := encodeTask(task)
	if err != nil {
		return fmt.Errorf("failed to encode task %q: %w", task.TaskID, err)
	}

	if err := q.client.LRem(ctx, processingKey, 1, payload).Err(); err != nil {
		return fmt.Errorf("failed to ack task %q: %w", task.TaskID, err)
	}

	return nil
}

// RequeueStranded moves tasks left on the processing list by a previous
// run back onto the pending list. Call it once at startup, before workers
// begin dequeuing.
func (q *Redis) RequeueStranded(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, processingKey, pendingKey, "RIGHT", "LEFT").Err()
		if err == redis.Nil {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to requeue stranded task: %w", err)
		}

		moved++
	}
}

func (q *Redis) SetTaskState(ctx context.Context, taskID string, state domain.TaskState, result json.RawMessage, taskErr string) error {
	key := taskKeyPrefix + taskID

	fields := map[string]any{
		"state": string(state),
		"error": taskErr,
	}
	if result != nil {
		fields["result"] = string(result)
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, taskStatusTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set state of task %q: %w", taskID, err)
	}

	return nil
}

func (q *Redis) TaskStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	fields, err := q.client.HGetAll(ctx, taskKeyPrefix+taskID).Result()
	if err != nil {
		return domain.TaskStatus{}, fmt.Errorf("failed to get status of task %q: %w", taskID, err)
	}

	if len(fields) == 0 {
		return domain.TaskStatus{}, domain.ErrTaskNotFound
	}

	status := domain.TaskStatus{
		TaskID: taskID,
		State:  domain.TaskState(fields["state"]),
		Error:  fields["error"],
	}
	if result, ok := fields["result"]; ok && result != "" {
		status.Result = json.RawMessage(result)
	}

	return status, nil
}
