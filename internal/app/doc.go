// Package app wires configuration, infrastructure, services, and HTTP
// handlers into a runnable dashboard server.
//
// The Application container owns the dependency graph. Construction is
// strictly ordered: configuration first, then logging and metrics, then
// the data pipeline services, then the transport layer. Run blocks until
// SIGINT or SIGTERM and shuts the server down gracefully.
package app
