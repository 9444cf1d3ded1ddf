package v1

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
	"github.com/stanford-ddl/transcript-analyzer/internal/ingest"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) UploadBatch(ctx context.Context, files []ingest.BatchFile) (*ingest.BatchResult, error) {
	args := m.Called(ctx, files)
	if r := args.Get(0); r != nil {
		return r.(*ingest.BatchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFilesProvider struct {
	mock.Mock
}

func (m *mockFilesProvider) FilesBySetID(ctx context.Context, fileSetID uuid.UUID) ([]*domain.File, error) {
	args := m.Called(ctx, fileSetID)
	if f := args.Get(0); f != nil {
		return f.([]*domain.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFilesProvider) Progress(ctx context.Context, fileSetID uuid.UUID) (*domain.Progress, error) {
	args := m.Called(ctx, fileSetID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Progress), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFileProvider struct {
	mock.Mock
}

func (m *mockFileProvider) FileByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*domain.File), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockArtifactOpener struct {
	mock.Mock
}

func (m *mockArtifactOpener) OpenProcessed(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTaskStatusProvider struct {
	mock.Mock
}

func (m *mockTaskStatusProvider) TaskStatus(ctx context.Context, taskID string) (domain.TaskStatus, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(domain.TaskStatus), args.Error(1)
}

type mockProjectsService struct {
	mock.Mock
}

func (m *mockProjectsService) CreateProject(ctx context.Context, fileSetID uuid.UUID, name, userID string) (*domain.Project, error) {
	args := m.Called(ctx, fileSetID, name, userID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectsService) ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Project), args.Error(1)
	}
	return nil, args.Error(1)
}
