package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

func testConfig() config.Upload {
	return config.Upload{
		MaxBatchFiles:     3,
		MaxBatchBytes:     1000,
		MaxFileBytes:      500,
		AllowedExtensions: []string{".csv", ".xlsx"},
	}
}

func batchFile(name string, size int64) BatchFile {
	return BatchFile{
		Filename: name,
		Size:     size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("data")), nil
		},
	}
}

type serviceMocks struct {
	fileSets *mockFileSetCreator
	files    *mockFileWriter
	projects *mockProjectStore
	storage  *mockUploadSaver
	tasks    *mockTaskEnqueuer
}

func newService(t *testing.T) (*Service, serviceMocks) {
	t.Helper()

	mocks := serviceMocks{
		fileSets: &mockFileSetCreator{},
		files:    &mockFileWriter{},
		projects: &mockProjectStore{},
		storage:  &mockUploadSaver{},
		tasks:    &mockTaskEnqueuer{},
	}

	svc := NewService(
		slog.New(slog.DiscardHandler),
		testConfig(),
		mocks.fileSets,
		mocks.files,
		mocks.projects,
		mocks.storage,
		mocks.tasks,
		fakeTransactor{},
	)

	return svc, mocks
}

func TestService_UploadBatch_BatchValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t)

		_, err := svc.UploadBatch(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrEmptyBatch)
	})

	t.Run("too many files", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t)

		batch := []BatchFile{
			batchFile("a.csv", 1), batchFile("b.csv", 1),
			batchFile("c.csv", 1), batchFile("d.csv", 1),
		}

		_, err := svc.UploadBatch(ctx, batch)
		assert.ErrorIs(t, err, domain.ErrTooManyFiles)
	})

	t.Run("batch too large", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t)

		batch := []BatchFile{batchFile("a.csv", 600), batchFile("b.csv", 600)}

		_, err := svc.UploadBatch(ctx, batch)
		assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
	})
}

func TestService_UploadBatch_HappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, int64(500)).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(nil)
	mocks.files.On("MarkSaving", mock.Anything, mock.Anything, "inputs/stored.csv").Return(true, nil)
	mocks.tasks.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.UploadBatch(ctx, []BatchFile{batchFile("meeting.csv", 100)})
	require.NoError(t, err)

	assert.Equal(t, fileSet.ID, result.FileSetID)
	assert.Empty(t, result.Rejected)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, "meeting.csv", result.Uploaded[0].Filename)
	assert.NotEmpty(t, result.Uploaded[0].TaskID)

	created := mocks.files.Calls[0].Arguments.Get(1).(*domain.File)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, fileSet.ID, created.FileSetID)

	task := mocks.tasks.Calls[0].Arguments.Get(1).(domain.ProcessingTask)
	assert.Equal(t, created.ID, task.FileID)
	assert.Equal(t, "inputs/stored.csv", task.StoragePath)
}

func TestService_UploadBatch_PerFileIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(nil)
	mocks.files.On("MarkSaving", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mocks.tasks.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	batch := []BatchFile{
		batchFile("good.csv", 100),
		batchFile("malware.exe", 100),
		batchFile("huge.csv", 501),
	}

	result, err := svc.UploadBatch(ctx, batch)
	require.NoError(t, err)

	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, "good.csv", result.Uploaded[0].Filename)

	require.Len(t, result.Rejected, 2)
	assert.Equal(t, "malware.exe", result.Rejected[0].Filename)
	assert.Contains(t, result.Rejected[0].Reason, domain.ErrInvalidExtension.Error())
	assert.Equal(t, "huge.csv", result.Rejected[1].Filename)
}

func TestService_UploadBatch_StorageFailureIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", domain.ErrFileTooLarge).Once()
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(nil)
	mocks.files.On("MarkSaving", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mocks.tasks.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.UploadBatch(ctx, []BatchFile{
		batchFile("lies_about_size.csv", 100),
		batchFile("honest.csv", 100),
	})
	require.NoError(t, err)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "lies_about_size.csv", result.Rejected[0].Filename)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, "honest.csv", result.Uploaded[0].Filename)
}

func TestService_UploadBatch_EnqueueFailureMarksFailed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(nil)
	mocks.files.On("MarkSaving", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mocks.tasks.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	mocks.files.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	result, err := svc.UploadBatch(ctx, []BatchFile{batchFile("meeting.csv", 100)})
	require.NoError(t, err)

	assert.Empty(t, result.Uploaded)
	require.Len(t, result.Rejected, 1)

	mocks.files.AssertCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UploadBatch_CreateFileFailureDiscardsUpload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(errors.New("db down"))
	mocks.storage.On("DeleteUpload", mock.Anything, "inputs/stored.csv").Return(nil)

	result, err := svc.UploadBatch(ctx, []BatchFile{batchFile("meeting.csv", 100)})
	require.NoError(t, err)

	assert.Empty(t, result.Uploaded)
	mocks.storage.AssertCalled(t, "DeleteUpload", mock.Anything, "inputs/stored.csv")
}

func TestService_UploadBatch_LostSavingTransitionRejectsFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSet := &domain.FileSet{ID: uuid.New()}
	mocks.fileSets.On("CreateFileSet", mock.Anything).Return(fileSet, nil)
	mocks.storage.On("SaveUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("inputs/stored.csv", nil)
	mocks.files.On("CreateFile", mock.Anything, mock.Anything).Return(nil)
	mocks.files.On("MarkSaving", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mocks.storage.On("DeleteUpload", mock.Anything, "inputs/stored.csv").Return(nil)

	result, err := svc.UploadBatch(ctx, []BatchFile{batchFile("meeting.csv", 100)})
	require.NoError(t, err)

	assert.Empty(t, result.Uploaded)
	require.Len(t, result.Rejected, 1)
	assert.Contains(t, result.Rejected[0].Reason, domain.ErrInvalidTransition.Error())
	mocks.tasks.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	mocks.storage.AssertCalled(t, "DeleteUpload", mock.Anything, "inputs/stored.csv")
}

func TestService_CreateProject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mocks := newService(t)

	fileSetID := uuid.New()
	mocks.projects.On("CreateProject", mock.Anything, mock.Anything).Return(nil)

	project, err := svc.CreateProject(ctx, fileSetID, "pilot study", "user-42")
	require.NoError(t, err)

	assert.Equal(t, "pilot study", project.Name)
	require.NotNil(t, project.FileSetID)
	assert.Equal(t, fileSetID, *project.FileSetID)

	_, err = svc.CreateProject(ctx, fileSetID, "", "user-42")
	assert.Error(t, err)
}
