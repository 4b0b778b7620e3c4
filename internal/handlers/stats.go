package handlers

import (
	"net/http"

	"view-router/internal/pipeline"
	"view-router/internal/tracker"
)

// StatsResponse combines the activation counters and the tracked routes.
type StatsResponse struct {
	Metrics pipeline.Metrics `json:"metrics"`
	Hits    map[string]int64 `json:"hits"`
	Top     []string         `json:"top"`
	Recent  []tracker.Event  `json:"recent"`
}

// GetStats returns navigation statistics
// @Summary Get navigation statistics
// @Description Returns the activation counters, per-route hits and the most recent navigations
// @Tags statistics
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} errorResponse "Failed to get statistics"
// @Router /navigation/stats [get]
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Metrics: h.router.Metrics(),
		Hits:    map[string]int64{},
		Top:     []string{},
		Recent:  []tracker.Event{},
	}

	if h.recorder != nil {
		stats, err := h.recorder.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if stats.Hits != nil {
			resp.Hits = stats.Hits
		}
		if top := stats.RouteHits(); top != nil {
			resp.Top = top
		}
		if stats.Recent != nil {
			resp.Recent = stats.Recent
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
