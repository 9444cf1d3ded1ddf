package worker

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
	"github.com/stanford-ddl/transcript-analyzer/internal/transform"
)

type TaskSource interface {
	Dequeue(ctx context.Context) (domain.ProcessingTask, error)
	Ack(ctx context.Context, task domain.ProcessingTask) error
	SetTaskState(ctx context.Context, taskID string, state domain.TaskState, result json.RawMessage, taskErr string) error
}

type FileStore interface {
	FileByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, results json.RawMessage) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type ArtifactStorage interface {
	OpenUpload(ctx context.Context, path string) (io.ReadCloser, error)
	SaveProcessed(ctx context.Context, name string, r io.Reader) (string, error)
}

type Transformer interface {
	Apply(ctx context.Context, filename string, in io.Reader) (*transform.Output, error)
}
