package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-catalog/internal/indexer"
	"media-catalog/internal/logging"
	"media-catalog/internal/reconcile"
	"media-catalog/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Ready     bool   `json:"ready"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Running   bool   `json:"running"`
	LastPass  string `json:"lastPass,omitempty"`
	LastError string `json:"lastError,omitempty"`

	Progress   *indexer.Progress `json:"progress,omitempty"`
	LastReport *reconcile.Report `json:"lastReport,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	TotalEntries int `json:"totalEntries,omitempty"`
}

// HealthCheck returns the health status of the service. It answers 503
// until the first pass has finished.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	healthStatus := h.runner.GetHealthStatus()

	response := HealthResponse{
		Ready:        healthStatus.Ready,
		Version:      startup.Version,
		Uptime:       healthStatus.Uptime,
		Running:      healthStatus.Running,
		LastError:    healthStatus.LastError,
		Progress:     healthStatus.Progress,
		LastReport:   healthStatus.LastReport,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	switch {
	case !healthStatus.Ready:
		response.Status = statusStarting
	case healthStatus.LastError != "":
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	if !healthStatus.LastPass.IsZero() {
		response.LastPass = healthStatus.LastPass.Format(time.RFC3339)
	}

	if stats, err := h.store.Stats(r.Context()); err != nil {
		logging.Warn("Health check could not read catalog stats: %v", err)
	} else {
		response.TotalEntries = stats.TotalEntries
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthStatus.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only once the first pass has finished
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.runner.IsReady() {
		writeJSONStatus(w, http.StatusOK, "ready")
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
}
