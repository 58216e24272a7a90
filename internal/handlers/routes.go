package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-catalog/internal/middleware"
)

// Router returns a router with every endpoint registered. HTTP metrics are
// recorded per route template when metricsEnabled is set; /metrics itself
// is only served in that case.
func (h *Handlers) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()
	if metricsEnabled {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
		r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/reconcile", h.TriggerReconcile).Methods(http.MethodPost)
	api.HandleFunc("/entries", h.GetEntry).Methods(http.MethodGet)
	api.HandleFunc("/thumbnail/{id:[0-9]+}", h.GetThumbnail).Methods(http.MethodGet)

	return r
}
