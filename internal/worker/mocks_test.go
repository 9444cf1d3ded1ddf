package worker

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) FileByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*domain.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileStore) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileStore) MarkProcessed(ctx context.Context, id uuid.UUID, results json.RawMessage) (bool, error) {
	args := m.Called(ctx, id, results)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

type mockArtifactStorage struct {
	mock.Mock
}

func (m *mockArtifactStorage) OpenUpload(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockArtifactStorage) SaveProcessed(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}
