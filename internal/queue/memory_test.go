package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

func newTask() domain.ProcessingTask {
	return domain.ProcessingTask{
		TaskID:           uuid.NewString(),
		FileID:           uuid.New(),
		FileSetID:        uuid.New(),
		StoragePath:      "inputs/upload.csv",
		OriginalFilename: "upload.csv",
	}
}

func TestMemory_EnqueueDequeueAck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemory(4)

	task := newTask()
	require.NoError(t, q.Enqueue(ctx, task))

	status, err := q.TaskStatus(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStateQueued, status.State)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	require.NoError(t, q.Ack(ctx, got))

	moved, err := q.RequeueStranded(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestMemory_RequeueStranded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemory(4)

	task := newTask()
	require.NoError(t, q.Enqueue(ctx, task))

	_, err := q.Dequeue(ctx)
	require.NoError(t, err)

	// No Ack: the task is stranded in flight.
	moved, err := q.RequeueStranded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestMemory_DequeueRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	q := NewMemory(1)

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemory_DequeueAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemory(1)

	task := newTask()
	require.NoError(t, q.Enqueue(ctx, task))
	q.Close()

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_EnqueueAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemory(1)
	q.Close()

	err := q.Enqueue(ctx, newTask())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = q.RequeueStranded(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_TaskState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemory(1)

	taskID := uuid.NewString()

	_, err := q.TaskStatus(ctx, taskID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	result := json.RawMessage(`{"utterances":12}`)
	require.NoError(t, q.SetTaskState(ctx, taskID, domain.TaskStateSucceeded, result, ""))

	status, err := q.TaskStatus(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStateSucceeded, status.State)
	assert.JSONEq(t, string(result), string(status.Result))
}
