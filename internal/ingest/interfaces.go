package ingest

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type FileSetCreator interface {
	CreateFileSet(ctx context.Context) (*domain.FileSet, error)
}

type FileWriter interface {
	CreateFile(ctx context.Context, file *domain.File) error
	MarkSaving(ctx context.Context, id uuid.UUID, path string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProjectStore interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

type UploadSaver interface {
	SaveUpload(ctx context.Context, name string, r io.Reader, limit int64) (string, error)
	DeleteUpload(ctx context.Context, path string) error
}

type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task domain.ProcessingTask) error
}
