package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProcessingTask is the queue-resident work unit for one file. It lives only
// inside the queue transport; the files table remains the source of truth.
// file_id doubles as the idempotency key: redelivery of the same task must
// leave the file in the same terminal state.
type ProcessingTask struct {
	TaskID           string    `json:"task_id"`
	FileID           uuid.UUID `json:"file_id"`
	FileSetID        uuid.UUID `json:"file_set_id"`
	StoragePath      string    `json:"storage_path"`
	OriginalFilename string    `json:"original_filename"`
}

// TaskState is the queue-side view of a task, kept separately from the file
// status so clients can poll a task reference returned by the upload call.
type TaskState string

const (
	TaskStateQueued    TaskState = "queued"
	TaskStateStarted   TaskState = "started"
	TaskStateSucceeded TaskState = "succeeded"
	TaskStateFailed    TaskState = "failed"
)

type TaskStatus struct {
	TaskID string          `json:"task_id"`
	State  TaskState       `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
