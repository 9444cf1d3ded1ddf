package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

// Memory is an in-process queue for tests and single-node deployments.
// In-flight tasks are tracked so RequeueStranded can return them to the
// channel, mirroring the redis implementation.
type Memory struct {
	tasks chan domain.ProcessingTask

	mu       sync.Mutex
	inFlight map[string]domain.ProcessingTask
	statuses map[string]domain.TaskStatus
	closed   bool
}

func NewMemory(capacity int) *Memory {
	return &Memory{
		tasks:    make(chan domain.ProcessingTask, capacity),
		inFlight: make(map[string]domain.ProcessingTask),
		statuses: make(map[string]domain.TaskStatus),
	}
}

// Close stops delivery. Pending tasks already in the channel are still
// handed out; after that Dequeue returns ErrClosed.
func (q *Memory) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}

func (q *Memory) Ping(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	return nil
}

func (q *Memory) Enqueue(ctx context.Context, task domain.ProcessingTask) error {
	if err := q.SetTaskState(ctx, task.TaskID, domain.TaskStateQueued, nil, ""); err != nil {
		return err
	}

	// The lock is held across the send so Close cannot close the channel
	// mid-send. Receivers do not take the lock before receiving, so a
	// full channel still drains.
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Memory) Dequeue(ctx context.Context) (domain.ProcessingTask, error) {
	select {
	case task, ok := <-q.tasks:
		if !ok {
			return domain.ProcessingTask{}, ErrClosed
		}

		q.mu.Lock()
		q.inFlight[task.TaskID] = task
		q.mu.Unlock()

		return task, nil
	case <-ctx.Done():
		return domain.ProcessingTask{}, ctx.Err()
	}
}

func (q *Memory) Ack(_ context.Context, task domain.ProcessingTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.inFlight, task.TaskID)

	return nil
}

func (q *Memory) RequeueStranded(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, ErrClosed
	}

	stranded := make([]domain.ProcessingTask, 0, len(q.inFlight))
	for _, task := range q.inFlight {
		stranded = append(stranded, task)
	}
	q.inFlight = make(map[string]domain.ProcessingTask)

	for i, task := range stranded {
		select {
		case q.tasks <- task:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}

	return len(stranded), nil
}

func (q *Memory) SetTaskState(_ context.Context, taskID string, state domain.TaskState, result json.RawMessage, taskErr string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.statuses[taskID] = domain.TaskStatus{
		TaskID: taskID,
		State:  state,
		Result: result,
		Error:  taskErr,
	}

	return nil
}

func (q *Memory) TaskStatus(_ context.Context, taskID string) (domain.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	status, ok := q.statuses[taskID]
	if !ok {
		return domain.TaskStatus{}, domain.ErrTaskNotFound
	}

	return status, nil
}
