package v1

import (
	"context"
	"io"
	"net/http"

	"github.com/stanford-ddl/transcript-analyzer/internal/ingest"
)

// multipartMemory caps the part of an upload held in memory, the rest
// spills to temporary files.
const multipartMemory = 32 << 20

type UploadHandler struct {
	ingester Ingester
	projects ProjectsService
}

type Ingester interface {
	UploadBatch(ctx context.Context, files []ingest.BatchFile) (*ingest.BatchResult, error)
}

func NewUploadHandler(ingester Ingester, projects ProjectsService) *UploadHandler {
	return &UploadHandler{
		ingester: ingester,
		projects: projects,
	}
}

func (h *UploadHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]

	batch := make([]ingest.BatchFile, 0, len(headers))
	for _, header := range headers {
		batch = append(batch, ingest.BatchFile{
			Filename: header.Filename,
			Size:     header.Size,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}

	result, err := h.ingester.UploadBatch(r.Context(), batch)
	if err != nil {
		writeError(w, err)
		return
	}

	// An optional project groups the batch under a name for later lookup.
	if name := r.FormValue("project_name"); name != "" {
		project, err := h.projects.CreateProject(r.Context(), result.FileSetID, name, r.FormValue("user_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		result.ProjectID = &project.ID
	}

	writeJSON(w, http.StatusOK, result)
}
