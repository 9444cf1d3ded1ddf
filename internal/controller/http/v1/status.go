package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type StatusHandler struct {
	files FilesProvider
}

type FilesProvider interface {
	FilesBySetID(ctx context.Context, fileSetID uuid.UUID) ([]*domain.File, error)
	Progress(ctx context.Context, fileSetID uuid.UUID) (*domain.Progress, error)
}

func NewStatusHandler(files FilesProvider) *StatusHandler {
	return &StatusHandler{
		files: files,
	}
}

type fileStatus struct {
	FileID       uuid.UUID     `json:"id"`
	Filename     string        `json:"original_filename"`
	Status       domain.Status `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
}

type statusResponse struct {
	FileSetID uuid.UUID    `json:"file_set_id"`
	Files     []fileStatus `json:"files"`
}

func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	fileSetID, err := uuid.Parse(chi.URLParam(r, "file_set_id"))
	if err != nil {
		http.Error(w, "invalid file set id", http.StatusBadRequest)
		return
	}

	files, err := h.files.FilesBySetID(r.Context(), fileSetID)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(files) == 0 {
		writeError(w, domain.ErrFileSetNotFound)
		return
	}

	resp := statusResponse{
		FileSetID: fileSetID,
		Files:     make([]fileStatus, 0, len(files)),
	}
	for _, file := range files {
		resp.Files = append(resp.Files, fileStatus{
			FileID:       file.ID,
			Filename:     file.OriginalFilename,
			Status:       file.Status,
			ErrorMessage: file.ErrorMessage,
			ProcessedAt:  file.ProcessedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatusHandler) GetUploadProgress(w http.ResponseWriter, r *http.Request) {
	fileSetID, err := uuid.Parse(chi.URLParam(r, "file_set_id"))
	if err != nil {
		http.Error(w, "invalid file set id", http.StatusBadRequest)
		return
	}

	progress, err := h.files.Progress(r.Context(), fileSetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}
