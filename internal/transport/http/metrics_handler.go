package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/dev-loop1/partial-week-converter/internal/errors"
)

// MetricsHandler serves the Prometheus exposition.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the exporter's handler. A nil handler means metrics are disabled.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Enabled reports whether an exporter is configured.
func (h *MetricsHandler) Enabled() bool {
	return h.exposition != nil
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		render.Render(w, r, apierrors.NewProblemDetails(
			http.StatusNotFound,
			apierrors.TypeNotFound,
			"Not Found",
			"Metrics exporter is disabled",
			r.URL.Path,
		))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
