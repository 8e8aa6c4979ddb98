// Package http contains the chi HTTP handlers for the dashboard API.
//
// Handlers validate query parameters with the shared validation
// middleware, answer errors as RFC 7807 problem documents, and log with
// the request-scoped structured logger.
package http
