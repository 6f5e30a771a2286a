package handlers

import (
	"net/http"

	"bilimBack/internal/services"
)

type AdminHandler struct {
	Stats *services.StatsService
}

// GetDashboardStats serves the persisted counters without touching the user
// table; the background aggregator keeps them fresh.
func (h *AdminHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
