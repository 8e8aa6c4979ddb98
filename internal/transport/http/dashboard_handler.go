package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"callpulse/internal/analytics"
	apierrors "callpulse/internal/errors"
	"callpulse/internal/geo"
	"callpulse/internal/insights"
	mw "callpulse/internal/middleware"
	"callpulse/internal/services"
	api "callpulse/pkg/contracts/api/v1"
)

// DashboardHandler serves the aggregate dashboard endpoints with RFC
// 7807 error responses.
type DashboardHandler struct {
	reports      *services.ReportService
	summaries    *insights.Builder
	validator    *mw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(reports *services.ReportService, validator *mw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		reports:      reports,
		summaries:    insights.NewBuilder(reports.Aggregator()),
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/aggregate", h.GetAggregate)
	r.Get("/forecast", h.GetForecast)
	r.Get("/map", h.GetMap)
	r.Get("/providers", h.GetProviders)

	return r
}

// scopeFromQuery reads and validates the shared scope parameters.
func (h *DashboardHandler) scopeFromQuery(w http.ResponseWriter, r *http.Request) (analytics.Scope, bool) {
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

// GetSummary handles GET /api/dashboard/summary: the KPI block plus the
// Arabic narrative for the requested scope.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	// Delta and top-month compare across months, so they run over the
	// full table; the scope only narrows their source element.
	records, report, err := h.reports.Records(r.Context())
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	agg := h.reports.Aggregator()
	scoped := agg.Filter(records, scope)
	summary := map[string]interface{}{
		"total_calls": len(scoped),
		"narrative":   h.summaries.Build(scoped),
		"load":        report,
	}

	if avg, ok := agg.Average(records, scope); ok {
		summary["average"] = avg
	}
	if delta, ok := agg.Delta(records, scope); ok {
		summary["delta"] = delta
	}
	if month, count, ok := agg.TopMonth(records, scope); ok {
		summary["top_month"] = map[string]interface{}{"month": month, "count": count}
	}

	typeCounts := agg.CountBy(scoped, analytics.DimServiceType)
	summary["service_types"] = typeCounts

	forecast, err := h.reports.Forecast(r.Context(), scope.Source)
	if err == nil {
		summary["forecast"] = forecast
	}

	render.JSON(w, r, map[string]interface{}{"status": "success", "data": summary})
}

// GetAggregate handles GET /api/dashboard/aggregate: grouped counts by
// one categorical dimension within a scope.
func (h *DashboardHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	req := api.AggregateRequest{
		ScopeRequest: api.ScopeRequest{
			Source: r.URL.Query().Get("source"),
			Month:  r.URL.Query().Get("month"),
			Week:   r.URL.Query().Get("week"),
		},
		Dimension: r.URL.Query().Get("dimension"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	scope := analytics.Scope{Source: req.Source, Month: req.Month, Week: req.Week}
	scoped, _, err := h.reports.Scoped(r.Context(), scope)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	agg := h.reports.Aggregator()
	var data interface{}
	if req.Dimension == analytics.DimMonth {
		// Time-series consumers need canonical month order, not
		// descending counts.
		data = agg.MonthlySeries(scoped)
	} else {
		data = agg.CountBy(scoped, req.Dimension)
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"dimension": req.Dimension,
		"data":      data,
	})
}

// GetForecast handles GET /api/dashboard/forecast. Insufficient data is
// a successful response with method "none", never an error.
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	req := api.ForecastRequest{Source: r.URL.Query().Get("source")}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	forecast, err := h.reports.Forecast(r.Context(), req.Source)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "forecast computed",
		slog.String("request_id", mw.GetReqID(r.Context())),
		slog.String("source", req.Source),
		slog.String("method", string(forecast.Method)))

	render.JSON(w, r, map[string]interface{}{"status": "success", "data": forecast})
}

// GetMap handles GET /api/dashboard/map: call-volume bubbles per known
// city, falling back to region centroids.
func (h *DashboardHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	scoped, _, err := h.reports.Scoped(r.Context(), scope)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   geo.BuildMapPoints(scoped),
	})
}

// GetProviders handles GET /api/dashboard/providers: the provider
// distribution for the latest (or selected) month.
func (h *DashboardHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	scoped, _, err := h.reports.Scoped(r.Context(), analytics.Scope{Source: scope.Source})
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	agg := h.reports.Aggregator()
	month := scope.Month
	if month == "" {
		if months := agg.Months(scoped); len(months) > 0 {
			month = months[len(months)-1]
		}
	}

	monthScoped := agg.Filter(scoped, analytics.Scope{Month: month})
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"month":  month,
		"data":   agg.CountBy(monthScoped, analytics.DimProvider),
	})
}

func (h *DashboardHandler) handleLoadError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "table load failed",
		slog.String("request_id", mw.GetReqID(r.Context())),
		slog.String("error", err.Error()))
	h.errorHandler.HandleError(w, r, apierrors.LoadError(err))
}
