package domain

import (
	"time"
)

// MonthlyCount is one point of the monthly call-volume series, ordered by
// the canonical month order of the reporting horizon.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ForecastMethod identifies how a forecast value was produced.
type ForecastMethod string

const (
	// ForecastMethodRegression is the OLS fit over (month ordinal, count).
	ForecastMethodRegression ForecastMethod = "regression"
	// ForecastMethodLastDelta extrapolates the last observed delta.
	ForecastMethodLastDelta ForecastMethod = "last_delta"
	// ForecastMethodNone means insufficient data; no prediction exists.
	ForecastMethodNone ForecastMethod = "none"
)

// Forecast is the next-period volume prediction. Predicted is nil when the
// series held fewer than two points ("insufficient data" is a first-class
// outcome, distinct from zero). Lower/Upper are nil when no confidence
// band could be computed (fallback method).
type Forecast struct {
	NextMonth string         `json:"next_month"`
	Predicted *int           `json:"predicted,omitempty"`
	Lower     *int           `json:"lower,omitempty"`
	Upper     *int           `json:"upper,omitempty"`
	Method    ForecastMethod `json:"method"`
}

// HasPrediction reports whether the forecast carries a usable value.
func (f Forecast) HasPrediction() bool {
	return f.Predicted != nil
}

// LoadReport describes the outcome of one load cycle over the data
// directory. Failed sources are reported, not fatal.
type LoadReport struct {
	LoadID        string    `json:"load_id"`
	LoadedAt      time.Time `json:"loaded_at"`
	SourcesLoaded int       `json:"sources_loaded"`
	SourcesFailed []string  `json:"sources_failed,omitempty"`
	RowsTotal     int       `json:"rows_total"`
	RowsSkipped   int       `json:"rows_skipped"`
	RowsExcluded  int       `json:"rows_excluded"`
}

// MapPoint is one bubble on the call-distribution map.
type MapPoint struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`
}
