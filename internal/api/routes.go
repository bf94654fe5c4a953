package api

import (
	"net/http"

	"selfheal/internal/logs"
)

func RegisterRoutes(mux *http.ServeMux, h *Handler, logger *logs.Logger) http.Handler {
	// Observability APIs
	mux.HandleFunc("GET /health", h.GetHealth)
	mux.HandleFunc("GET /state", h.GetState)
	mux.HandleFunc("GET /metrics", h.GetMetrics)

	// Admin APIs
	mux.HandleFunc("GET /admin/workers", h.GetWorkers)
	mux.HandleFunc("POST /admin/faults", h.InjectFault)

	// Middlewares
	return Chain(
		mux,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)
}
