package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type ProjectsHandler struct {
	projects ProjectsService
	files    FilesProvider
}

type ProjectsService interface {
	CreateProject(ctx context.Context, fileSetID uuid.UUID, name, userID string) (*domain.Project, error)
	ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

func NewProjectsHandler(projects ProjectsService, files FilesProvider) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		files:    files,
	}
}

type createProjectRequest struct {
	FileSetID uuid.UUID `json:"file_set_id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
}

func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "project name is required", http.StatusBadRequest)
		return
	}

	project, err := h.projects.CreateProject(r.Context(), req.FileSetID, req.Name, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

type fileResults struct {
	FileID   uuid.UUID       `json:"file_id"`
	Filename string          `json:"filename"`
	Status   domain.Status   `json:"status"`
	Results  json.RawMessage `json:"results,omitempty"`
}

type projectResultsResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Name      string        `json:"name"`
	Files     []fileResults `json:"files"`
}

func (h *ProjectsHandler) GetProjectResults(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "project_id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.projects.ProjectByID(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := projectResultsResponse{
		ProjectID: project.ID,
		Name:      project.Name,
		Files:     []fileResults{},
	}

	if project.FileSetID != nil {
		files, err := h.files.FilesBySetID(r.Context(), *project.FileSetID)
		if err != nil {
			writeError(w, err)
			return
		}

		for _, file := range files {
			resp.Files = append(resp.Files, fileResults{
				FileID:   file.ID,
				Filename: file.OriginalFilename,
				Status:   file.Status,
				Results:  file.Results,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
