package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regflow/internal/platform/metrics"
	"regflow/internal/platform/middleware"
)

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(h *Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/reg", func(r chi.Router) {
		r.Get("/init", h.handleInit)
		r.Post("/field", h.handleField)
		r.Post("/file", h.handleFile)
		r.Post("/update", h.handleUpdate)
		r.Delete("/", h.handleDelete)
	})

	return r
}
