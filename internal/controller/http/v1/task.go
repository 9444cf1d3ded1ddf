package v1

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

type TaskHandler struct {
	tasks TaskStatusProvider
}

type TaskStatusProvider interface {
	TaskStatus(ctx context.Context, taskID string) (domain.TaskStatus, error)
}

func NewTaskHandler(tasks TaskStatusProvider) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
	}
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		http.Error(w, "task id is required", http.StatusBadRequest)
		return
	}

	status, err := h.tasks.TaskStatus(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
