package domain

import "errors"

// Batch-level validation errors reject the whole request before any durable
// write. Everything else is scoped to a single file or lookup.
var (
	ErrEmptyBatch    = errors.New("batch contains no files")
	ErrTooManyFiles  = errors.New("too many files in batch")
	ErrBatchTooLarge = errors.New("total batch size exceeds limit")

	ErrInvalidExtension = errors.New("file extension is not allowed")
	ErrFileTooLarge     = errors.New("file size exceeds limit")

	ErrFileNotFound    = errors.New("file not found")
	ErrFileSetNotFound = errors.New("file set not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")

	ErrNotProcessed      = errors.New("file is not processed")
	ErrArtifactMissing   = errors.New("processed artifact is missing")
	ErrInvalidTransition = errors.New("invalid status transition")
)
