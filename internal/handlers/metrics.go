package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the default Prometheus registry. It is mounted at
// /metrics on the metrics port, not on the admin router.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
