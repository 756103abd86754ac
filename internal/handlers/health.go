package handlers

import (
	"net/http"
	"runtime"
	"time"

	"thumbcache/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

var startTime = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Uptime   string          `json:"uptime"`
	Backends map[string]bool `json:"backends"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The service is
// degraded when no generation backend is available; cached thumbnails
// are still served in that state.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	backends := make(map[string]bool)
	anyAvailable := false
	for _, b := range h.registry.Backends() {
		available := b.Available()
		backends[b.Name()] = available
		anyAvailable = anyAvailable || available
	}

	response := HealthResponse{
		Version:      startup.Version,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		Backends:     backends,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if anyAvailable {
		response.Status = statusHealthy
	} else {
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}
