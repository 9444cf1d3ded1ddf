package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

// BatchFile is one file of an upload batch. Open is called at most once,
// after the batch-level checks pass.
type BatchFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadedFile reports one successfully queued file of a batch.
type UploadedFile struct {
	FileID   uuid.UUID `json:"file_id"`
	Filename string    `json:"filename"`
	TaskID   string    `json:"task_id"`
}

// RejectedFile reports one file of a batch that was not queued.
type RejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchResult is the outcome of an accepted batch: every file is either
// uploaded or rejected, never silently dropped.
type BatchResult struct {
	FileSetID uuid.UUID      `json:"file_set_id"`
	ProjectID *uuid.UUID     `json:"project_id,omitempty"`
	Uploaded  []UploadedFile `json:"uploaded_files"`
	Rejected  []RejectedFile `json:"rejected_files,omitempty"`
}

// Service validates upload batches and turns each accepted file into a
// stored object, a tracked file record and a queued processing task.
type Service struct {
	log *slog.Logger
	cfg config.Upload

	fileSets   FileSetCreator
	files      FileWriter
	projects   ProjectStore
	storage    UploadSaver
	tasks      TaskEnqueuer
	transactor Transactor
}

func NewService(
	log *slog.Logger,
	cfg config.Upload,
	fileSets FileSetCreator,
	files FileWriter,
	projects ProjectStore,
	storage UploadSaver,
	tasks TaskEnqueuer,
	transactor Transactor,
) *Service {
	return &Service{
		log:        log,
		cfg:        cfg,
		fileSets:   fileSets,
		files:      files,
		projects:   projects,
		storage:    storage,
		tasks:      tasks,
		transactor: transactor,
	}
}

// UploadBatch ingests a batch of files. Batch-level violations reject the
// whole batch before anything is written. Per-file failures after that
// are isolated: the file is reported as rejected or failed and the rest
// of the batch proceeds.
func (s *Service) UploadBatch(ctx context.Context, files []BatchFile) (*BatchResult, error) {
	if err := s.validateBatch(files); err != nil {
		return nil, err
	}

	fileSet, err := s.fileSets.CreateFileSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create file set: %w", err)
	}

	s.log.InfoContext(ctx, "accepted upload batch",
		slog.String("file_set_id", fileSet.ID.String()),
		slog.Int("file_count", len(files)),
	)

	result := &BatchResult{FileSetID: fileSet.ID}
	for _, file := range files {
		uploaded, err := s.ingestFile(ctx, fileSet.ID, file)
		if err != nil {
			s.log.WarnContext(ctx, "rejected file",
				slog.String("file_set_id", fileSet.ID.String()),
				slog.String("filename", file.Filename),
				slog.Any("error", err),
			)

			result.Rejected = append(result.Rejected, RejectedFile{
				Filename: file.Filename,
				Reason:   err.Error(),
			})
			continue
		}

		result.Uploaded = append(result.Uploaded, *uploaded)
	}

	return result, nil
}

func (s *Service) validateBatch(files []BatchFile) error {
	if len(files) == 0 {
		return domain.ErrEmptyBatch
	}

	if len(files) > s.cfg.MaxBatchFiles {
		return fmt.Errorf("%w: %d files, at most %d allowed",
			domain.ErrTooManyFiles, len(files), s.cfg.MaxBatchFiles)
	}

	var total int64
	for _, file := range files {
		total += file.Size
	}
	if total > s.cfg.MaxBatchBytes {
		return fmt.Errorf("%w: %d bytes, at most %d allowed",
			domain.ErrBatchTooLarge, total, s.cfg.MaxBatchBytes)
	}

	return nil
}

func (s *Service) validateFile(file BatchFile) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(s.cfg.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidExtension, ext)
	}

	if file.Size > s.cfg.MaxFileBytes {
		return fmt.Errorf("%w: %d bytes, at most %d allowed",
			domain.ErrFileTooLarge, file.Size, s.cfg.MaxFileBytes)
	}

	return nil
}

func (s *Service) ingestFile(ctx context.Context, fileSetID uuid.UUID, file BatchFile) (*UploadedFile, error) {
	if err := s.validateFile(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	fileID := uuid.New()

	// The stored name is the file ID, not the client's name, so uploads
	// can never collide or traverse paths.
	storageName := fileID.String() + strings.ToLower(filepath.Ext(file.Filename))

	// The declared size is client-provided, so the byte limit is enforced
	// again while streaming.
	path, err := s.storage.SaveUpload(ctx, storageName, src, s.cfg.MaxFileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	record := &domain.File{
		ID:               fileID,
		FileSetID:        fileSetID,
		FilePath:         path,
		OriginalFilename: file.Filename,
		Status:           domain.StatusPending,
	}

	// The row and its saving transition commit together: a crash between
	// them would otherwise leave a pending row no task will ever claim.
	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.files.CreateFile(ctx, record); err != nil {
			return fmt.Errorf("failed to create file record: %w", err)
		}

		ok, err := s.files.MarkSaving(ctx, fileID, path)
		if err != nil {
			return fmt.Errorf("failed to mark file saving: %w", err)
		}
		if !ok {
			// The row was created pending in this same transaction, so a
			// guarded update touching zero rows means the state machine
			// was violated, not raced.
			return fmt.Errorf("%w: file %s is not pending", domain.ErrInvalidTransition, fileID)
		}

		return nil
	})
	if err != nil {
		s.discardUpload(ctx, path)
		return nil, err
	}

	task := domain.ProcessingTask{
		TaskID:           uuid.NewString(),
		FileID:           fileID,
		FileSetID:        fileSetID,
		StoragePath:      path,
		OriginalFilename: file.Filename,
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.failFile(ctx, fileID, err)
		return nil, fmt.Errorf("failed to enqueue processing task: %w", err)
	}

	return &UploadedFile{
		FileID:   fileID,
		Filename: file.Filename,
		TaskID:   task.TaskID,
	}, nil
}

// CreateProject attaches a named project to an existing file set.
func (s *Service) CreateProject(ctx context.Context, fileSetID uuid.UUID, name, userID string) (*domain.Project, error) {
	if name == "" {
		return nil, errors.New("project name is required")
	}

	project := &domain.Project{
		ID:        uuid.New(),
		FileSetID: &fileSetID,
		Name:      name,
		UserID:    userID,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ProjectByID looks up a project together with its file set reference.
func (s *Service) ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projects.ProjectByID(ctx, id)
}

func (s *Service) failFile(ctx context.Context, fileID uuid.UUID, cause error) {
	if _, err := s.files.MarkFailed(ctx, fileID, cause.Error()); err != nil {
		s.log.ErrorContext(ctx, "failed to mark file failed",
			slog.String("file_id", fileID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *Service) discardUpload(ctx context.Context, path string) {
	if err := s.storage.DeleteUpload(ctx, path); err != nil {
		s.log.ErrorContext(ctx, "failed to delete orphaned upload",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}
