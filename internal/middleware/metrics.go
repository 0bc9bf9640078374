package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gallery-admin/internal/metrics"
)

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are path prefixes that are not recorded
	SkipPaths []string
	// Routes are recorded under their own path label. Everything else is
	// collapsed by normalizePath.
	Routes []string
}

// DefaultMetricsConfig skips health checks and labels the admin API routes.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez"},
		Routes: []string{
			"/", "/version", "/copy-image", "/save-json",
			"/extract-exif", "/generate-thumbnails", "/api/catalog",
		},
	}
}

// Metrics returns a middleware that records Prometheus request metrics.
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	routes := make(map[string]bool, len(config.Routes))
	for _, r := range config.Routes {
		routes[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path, routes)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath keeps known routes and collapses static file paths to their
// first segment, so each uploaded image does not become its own series.
func normalizePath(path string, routes map[string]bool) string {
	if routes[path] {
		return path
	}

	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "/"
	}
	if idx := strings.Index(trimmed, "/"); idx != -1 {
		return "/" + trimmed[:idx] + "/{path}"
	}
	return "/{file}"
}
