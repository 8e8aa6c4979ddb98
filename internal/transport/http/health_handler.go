package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"callpulse/internal/services"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	health *services.HealthService
	logger *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(health *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		health: health,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Check handles GET /healthz. A degraded data directory still answers
// 200; the body carries the detail.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())
	render.Status(r, http.StatusOK)
	render.JSON(w, r, status)
}
