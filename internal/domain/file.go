package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FileSet is one batch upload. It is created once, never mutated, and owns
// its files (cascade delete).
type FileSet struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// File is one uploaded artifact within a FileSet. FilePath is empty until the
// bytes are durably stored; Results and ProcessedAt are set by the worker when
// the file reaches a terminal state.
type File struct {
	ID               uuid.UUID       `db:"id"                json:"id"`
	FileSetID        uuid.UUID       `db:"file_set_id"       json:"file_set_id"`
	FilePath         string          `db:"file_path"         json:"-"`
	OriginalFilename string          `db:"original_filename" json:"original_filename"`
	Status           Status          `db:"status"            json:"status"`
	ErrorMessage     string          `db:"error_message"     json:"error_message,omitempty"`
	Results          json.RawMessage `db:"results"           json:"results,omitempty"`
	CreatedAt        time.Time       `db:"created_at"        json:"created_at"`
	ProcessedAt      *time.Time      `db:"processed_at"      json:"processed_at,omitempty"`
}

// FileResults is the structured payload stored in files.results once a file
// is processed.
type FileResults struct {
	Artifact string          `json:"artifact"`
	Summary  json.RawMessage `json:"summary,omitempty"`
}

// Project is an optional named grouping created alongside a FileSet when the
// uploader supplies a project name.
type Project struct {
	ID        uuid.UUID  `db:"id"          json:"id"`
	FileSetID *uuid.UUID `db:"file_set_id" json:"file_set_id,omitempty"`
	Name      string     `db:"name"        json:"name"`
	UserID    string     `db:"user_id"     json:"user_id"`
	CreatedAt time.Time  `db:"created_at"  json:"created_at"`
}
