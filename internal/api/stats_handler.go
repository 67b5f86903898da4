package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alecgard/fiveplanner/internal/emailparse"
	"github.com/alecgard/fiveplanner/internal/planner"
)

// statsHandler serves attendance statistics and the stateless helpers.
type statsHandler struct {
	planner *planner.Service
}

func newStatsHandler(p *planner.Service) *statsHandler {
	return &statsHandler{planner: p}
}

// GetLeaderboard handles GET /api/v1/stats.
func (h *statsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stats": h.planner.Leaderboard()})
}

// GetPlayerStats handles GET /api/v1/players/{id}/stats.
func (h *statsHandler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.planner.PlayerStats(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ParseEmail handles POST /api/v1/email/parse. A failed parse is reported in
// the result body, not as an HTTP error.
func (h *statsHandler) ParseEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	writeJSON(w, http.StatusOK, emailparse.Parse(req.Text))
}

// ResetAvatars handles POST /api/v1/avatars/reset.
func (h *statsHandler) ResetAvatars(w http.ResponseWriter, r *http.Request) {
	h.planner.ResetAvatars()
	auditLog(r, "reset", "avatars", "")
	w.WriteHeader(http.StatusNoContent)
}
