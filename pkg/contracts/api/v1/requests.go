// Package api contains API contract definitions for the CallPulse dashboard.
// Version v1 represents the current stable API version.
package api

// ScopeRequest carries the conjunctive (source, month, week) filter shared
// by most dashboard endpoints. Empty fields are no-ops.
type ScopeRequest struct {
	Source string `json:"source" query:"source" validate:"omitempty,max=64"`
	Month  string `json:"month" query:"month" validate:"omitempty,alpha,len=3"`
	Week   string `json:"week" query:"week" validate:"omitempty,max=16"`
}

// AggregateRequest asks for grouped counts over one categorical dimension
// within a scope.
type AggregateRequest struct {
	ScopeRequest
	Dimension string `json:"dimension" query:"dimension" validate:"required,oneof=region city company provider service_type month week"`
}

// RecordSearchRequest asks for the filtered table, optionally narrowed by a
// case-insensitive substring search across visible columns.
type RecordSearchRequest struct {
	ScopeRequest
	Query string `json:"q" query:"q" validate:"omitempty,max=128"`
	Limit int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=5000"`
}

// ForecastRequest asks for the next-month volume forecast, optionally
// narrowed to one source.
type ForecastRequest struct {
	Source string `json:"source" query:"source" validate:"omitempty,max=64"`
}
