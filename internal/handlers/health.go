package handlers

import (
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports router and dependency health
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "A dependency is unhealthy"
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"router":    "running",
	}

	if !h.router.IsRunning() {
		status = http.StatusServiceUnavailable
		health["status"] = "unhealthy"
		health["router"] = "stopped"
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name](); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health[name] = err.Error()
			continue
		}
		health[name] = "healthy"
	}

	writeJSON(w, status, health)
}
