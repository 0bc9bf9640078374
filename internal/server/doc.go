// Package server assembles the gallery admin HTTP server.
//
// NewRouter registers the admin endpoints on a gorilla/mux router and falls
// back to serving the gallery site from the root directory. New wraps the
// router in the middleware chain (request ID, access log, CORS, Prometheus
// metrics) and, when metrics are enabled, prepares a second listener that
// exposes /metrics.
//
// Run blocks until its context is cancelled or a listener fails, then shuts
// both servers down, allowing in-flight requests up to ShutdownTimeout to
// finish.
package server
