// Package services composes the ingestion pipeline behind the HTTP
// layer: DataService runs and memoizes load cycles over the data
// directory, ReportService layers aggregation and forecasting on the
// loaded table, and HealthService reports process and data health.
package services
