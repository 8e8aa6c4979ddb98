package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"callpulse/internal/analytics"
	apierrors "callpulse/internal/errors"
	"callpulse/internal/exporter"
	mw "callpulse/internal/middleware"
	"callpulse/internal/services"
	api "callpulse/pkg/contracts/api/v1"
	"callpulse/pkg/contracts/domain"
)

const defaultRecordLimit = 1000

// RecordsHandler serves the detailed record table, its search endpoint,
// and the CSV downloads.
type RecordsHandler struct {
	reports      *services.ReportService
	validator    *mw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRecordsHandler creates a records handler.
func NewRecordsHandler(reports *services.ReportService, validator *mw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RecordsHandler {
	return &RecordsHandler{
		reports:      reports,
		validator:    validator,
		logger:       logger.With(slog.String("component", "records_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the record routes.
func (h *RecordsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetRecords)

	return r
}

// ExportRoutes returns the CSV download routes.
func (h *RecordsHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/records.csv", h.ExportRecords)
	r.Get("/summary.csv", h.ExportSummary)

	return r
}

// GetRecords handles GET /api/records: the scoped table with optional
// substring search, capped by the limit parameter.
func (h *RecordsHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	req := api.RecordSearchRequest{
		ScopeRequest: api.ScopeRequest{
			Source: r.URL.Query().Get("source"),
			Month:  r.URL.Query().Get("month"),
			Week:   r.URL.Query().Get("week"),
		},
		Query: r.URL.Query().Get("q"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	qv := mw.NewQueryParamValidator(h.logger, h.errorHandler)
	limit, ok := qv.ValidateInt(w, r, "limit", 1, 5000, defaultRecordLimit)
	if !ok {
		return
	}

	scope := analytics.Scope{Source: req.Source, Month: req.Month, Week: req.Week}
	scoped, _, err := h.reports.Scoped(r.Context(), scope)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	agg := h.reports.Aggregator()
	matched := agg.Search(scoped, req.Query)

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"total":  total,
		"count":  len(matched),
		"data":   matched,
	})
}

// ExportRecords handles GET /api/export/records.csv.
func (h *RecordsHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	scoped, _, err := h.reports.Scoped(r.Context(), scope)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)

	if err := exporter.WriteRecords(w, scoped); err != nil {
		h.logger.ErrorContext(r.Context(), "record export failed",
			slog.String("error", err.Error()))
	}
}

// ExportSummary handles GET /api/export/summary.csv.
func (h *RecordsHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	scoped, _, err := h.reports.Scoped(r.Context(), scope)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	forecast, err := h.reports.Forecast(r.Context(), scope.Source)
	if err != nil {
		forecast = domain.Forecast{Method: domain.ForecastMethodNone}
	}

	agg := h.reports.Aggregator()
	input := exporter.SummaryInput{
		Series:   agg.MonthlySeries(scoped),
		Regions:  agg.CountBy(scoped, analytics.DimRegion),
		Types:    agg.CountBy(scoped, analytics.DimServiceType),
		Forecast: forecast,
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)

	if err := exporter.WriteSummary(w, input); err != nil {
		h.logger.ErrorContext(r.Context(), "summary export failed",
			slog.String("error", err.Error()))
	}
}

func (h *RecordsHandler) scopeFromQuery(w http.ResponseWriter, r *http.Request) (analytics.Scope, bool) {
	req := api.ScopeRequest{
		Source: r.URL.Query().Get("source"),
		Month:  r.URL.Query().Get("month"),
		Week:   r.URL.Query().Get("week"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return analytics.Scope{}, false
	}
	return analytics.Scope{Source: req.Source, Month: req.Month, Week: req.Week}, true
}

func (h *RecordsHandler) handleLoadError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "table load failed",
		slog.String("request_id", mw.GetReqID(r.Context())),
		slog.String("error", err.Error()))
	h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
}
