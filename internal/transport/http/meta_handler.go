package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"callpulse/internal/analytics"
	apierrors "callpulse/internal/errors"
	"callpulse/internal/services"
)

// MetaHandler serves the filter option lists and the manual reload
// endpoint.
type MetaHandler struct {
	data         *services.DataService
	reports      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMetaHandler creates a meta handler.
func NewMetaHandler(data *services.DataService, reports *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MetaHandler {
	return &MetaHandler{
		data:         data,
		reports:      reports,
		logger:       logger.With(slog.String("component", "meta_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the meta routes.
func (h *MetaHandler) Routes(r chi.Router) {
	r.Get("/months", h.GetMonths)
	r.Get("/sources", h.GetSources)
	r.Get("/weeks", h.GetWeeks)
	r.Post("/reload", h.Reload)
}

// GetMonths handles GET /api/months: horizon months present in the data,
// in canonical order.
func (h *MetaHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	records, _, err := h.reports.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.reports.Aggregator().Months(records),
	})
}

// GetSources handles GET /api/sources.
func (h *MetaHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	records, _, err := h.reports.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.reports.Aggregator().Sources(records),
	})
}

// GetWeeks handles GET /api/weeks?month=Oct: week labels observed for a
// month, in rank order.
func (h *MetaHandler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", "Month parameter is required"))
		return
	}

	records, _, err := h.reports.Records(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
		return
	}

	scope := analytics.Scope{Source: r.URL.Query().Get("source"), Month: month}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.reports.Aggregator().WeeksForMonth(records, scope),
	})
}

// Reload handles POST /api/reload: purge the cache and run a fresh load
// cycle, returning its report.
func (h *MetaHandler) Reload(w http.ResponseWriter, r *http.Request) {
	table, err := h.data.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "manual reload failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "manual reload complete",
		slog.String("load_id", table.Report.LoadID),
		slog.Int("rows_total", table.Report.RowsTotal))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   table.Report,
	})
}
