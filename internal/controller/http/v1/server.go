package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stanford-ddl/transcript-analyzer/internal/config"
)

type Server struct {
	httpServer *http.Server
}

type Handlers struct {
	Ingester  Ingester
	Files     FilesProvider
	File      FileProvider
	Artifacts ArtifactOpener
	Tasks     TaskStatusProvider
	Projects  ProjectsService

	// Pings are dependency liveness checks reported by /health.
	Pings map[string]func(context.Context) error
}

func NewServer(cfg config.HTTP, h Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      newRouter(h),
		},
	}
}

func newRouter(h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	upload := NewUploadHandler(h.Ingester, h.Projects)
	status := NewStatusHandler(h.Files)
	download := NewDownloadHandler(h.File, h.Artifacts)
	task := NewTaskHandler(h.Tasks)
	projects := NewProjectsHandler(h.Projects, h.Files)

	r.Post("/uploadfiles/", upload.UploadFiles)
	r.Get("/status/{file_set_id}", status.GetStatus)
	r.Get("/upload-progress/{file_set_id}", status.GetUploadProgress)
	r.Get("/download/{file_id}", download.DownloadFile)
	r.Get("/task/{task_id}", task.GetTask)

	r.Post("/projects/", projects.CreateProject)
	r.Get("/projects/{project_id}/results", projects.GetProjectResults)

	r.Get("/health", NewHealthHandler(h.Pings).GetHealth)

	return r
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
