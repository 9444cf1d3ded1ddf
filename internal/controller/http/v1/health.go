package v1

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	pings map[string]func(context.Context) error
}

func NewHealthHandler(pings map[string]func(context.Context) error) *HealthHandler {
	return &HealthHandler{
		pings: pings,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetHealth pings every registered dependency and reports 503 as soon
// as one of them is down.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	if len(h.pings) > 0 {
		resp.Checks = make(map[string]string, len(h.pings))
	}

	code := http.StatusOK
	for name, ping := range h.pings {
		if err := ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, code, resp)
}
