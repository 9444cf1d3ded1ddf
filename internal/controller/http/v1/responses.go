package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrFileSetNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrArtifactMissing):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrTooManyFiles),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrInvalidExtension),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrNotProcessed):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
