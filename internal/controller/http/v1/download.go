package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type DownloadHandler struct {
	files     FileProvider
	artifacts ArtifactOpener
}

type FileProvider interface {
	FileByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
}

type ArtifactOpener interface {
	OpenProcessed(ctx context.Context, path string) (io.ReadCloser, error)
}

func NewDownloadHandler(files FileProvider, artifacts ArtifactOpener) *DownloadHandler {
	return &DownloadHandler{
		files:     files,
		artifacts: artifacts,
	}
}

func (h *DownloadHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "file_id"))
	if err != nil {
		http.Error(w, "invalid file id", http.StatusBadRequest)
		return
	}

	file, err := h.files.FileByID(r.Context(), fileID)
	if err != nil {
		writeError(w, err)
		return
	}

	if file.Status != domain.StatusProcessed {
		writeError(w, fmt.Errorf("%w: status is %q", domain.ErrNotProcessed, file.Status))
		return
	}

	var results domain.FileResults
	if err := json.Unmarshal(file.Results, &results); err != nil || results.Artifact == "" {
		writeError(w, domain.ErrArtifactMissing)
		return
	}

	artifact, err := h.artifacts.OpenProcessed(r.Context(), results.Artifact)
	if err != nil {
		writeError(w, err)
		return
	}
	defer artifact.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(results.Artifact)))

	io.Copy(w, artifact)
}
