package ingest

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type mockFileSetCreator struct {
	mock.Mock
}

func (m *mockFileSetCreator) CreateFileSet(ctx context.Context) (*domain.FileSet, error) {
	args := m.Called(ctx)
	if fs := args.Get(0); fs != nil {
		return fs.(*domain.FileSet), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFileWriter struct {
	mock.Mock
}

func (m *mockFileWriter) CreateFile(ctx context.Context, file *domain.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *mockFileWriter) MarkSaving(ctx context.Context, id uuid.UUID, path string) (bool, error) {
	args := m.Called(ctx, id, path)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileWriter) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

// fakeTransactor runs the callback directly, without a database.
type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockProjectStore struct {
	mock.Mock
}

func (m *mockProjectStore) CreateProject(ctx context.Context, project *domain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *mockProjectStore) ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUploadSaver struct {
	mock.Mock
}

func (m *mockUploadSaver) SaveUpload(ctx context.Context, name string, r io.Reader, limit int64) (string, error) {
	args := m.Called(ctx, name, r, limit)
	return args.String(0), args.Error(1)
}

func (m *mockUploadSaver) DeleteUpload(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

type mockTaskEnqueuer struct {
	mock.Mock
}

func (m *mockTaskEnqueuer) Enqueue(ctx context.Context, task domain.ProcessingTask) error {
	return m.Called(ctx, task).Error(0)
}
