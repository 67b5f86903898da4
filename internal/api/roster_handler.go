package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/roster"
)

// rosterHandler groups player, group and pitch handlers.
type rosterHandler struct {
	planner *planner.Service
}

func newRosterHandler(p *planner.Service) *rosterHandler {
	return &rosterHandler{planner: p}
}

// playerView is a player with its display group and avatar colour.
type playerView struct {
	roster.Player
	GroupName   string `json:"groupName"`
	AvatarColor string `json:"avatarColor"`
}

func (h *rosterHandler) playerViews(players []roster.Player) []playerView {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	colors := h.planner.AvatarColors(ids)

	out := make([]playerView, len(players))
	for i, p := range players {
		out[i] = playerView{
			Player:      p,
			GroupName:   h.planner.Roster().GroupName(p),
			AvatarColor: colors[p.ID],
		}
	}
	return out
}

// --- players ---

// ListPlayers handles GET /api/v1/players.
func (h *rosterHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"players": h.playerViews(h.planner.Roster().Players())})
}

// GetPlayer handles GET /api/v1/players/{id}.
func (h *rosterHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.planner.Roster().Player(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get player")
		return
	}
	writeJSON(w, http.StatusOK, h.playerViews([]roster.Player{p})[0])
}

// CreatePlayer handles POST /api/v1/players.
func (h *rosterHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input roster.CreatePlayerInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.planner.Roster().AddPlayer(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "failed to create player")
		return
	}

	auditLog(r, "create", "player", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

type bulkPlayersRequest struct {
	Players []roster.CreatePlayerInput `json:"players"`
}

// BulkCreatePlayers handles POST /api/v1/players/bulk.
func (h *rosterHandler) BulkCreatePlayers(w http.ResponseWriter, r *http.Request) {
	var req bulkPlayersRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if len(req.Players) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_body", "players must not be empty")
		return
	}

	added, err := h.planner.Roster().BulkAddPlayers(r.Context(), req.Players)
	if err != nil {
		writeServiceError(w, r, err, "failed to create players")
		return
	}

	auditLog(r, "bulk_create", "player", "", "count", len(added))
	writeJSON(w, http.StatusCreated, map[string]any{"players": added})
}

// UpdatePlayer handles PUT /api/v1/players/{id}. Keys set to null clear the
// optional field.
func (h *rosterHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input roster.PlayerUpdate
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.planner.Roster().UpdatePlayer(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err, "failed to update player")
		return
	}

	auditLog(r, "update", "player", id)
	writeJSON(w, http.StatusOK, p)
}

// DeletePlayer handles DELETE /api/v1/players/{id}.
func (h *rosterHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.planner.RemovePlayer(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete player")
		return
	}

	auditLog(r, "delete", "player", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- groups ---

// ListGroups handles GET /api/v1/groups.
func (h *rosterHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"groups":  h.planner.Roster().Groups(),
		"palette": roster.GroupPalette,
	})
}

// GetGroup handles GET /api/v1/groups/{id}.
func (h *rosterHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.planner.Roster().Group(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get group")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGroup handles POST /api/v1/groups.
func (h *rosterHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var input roster.CreateGroupInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	g, err := h.planner.Roster().AddGroup(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "failed to create group")
		return
	}

	auditLog(r, "create", "group", g.ID, "name", g.Name)
	writeJSON(w, http.StatusCreated, g)
}

// UpdateGroup handles PUT /api/v1/groups/{id}.
func (h *rosterHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input roster.GroupUpdate
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	g, err := h.planner.Roster().UpdateGroup(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err, "failed to update group")
		return
	}

	auditLog(r, "update", "group", id)
	writeJSON(w, http.StatusOK, g)
}

// DeleteGroup handles DELETE /api/v1/groups/{id}. Players keep the dangling
// reference.
func (h *rosterHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.planner.Roster().RemoveGroup(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete group")
		return
	}

	auditLog(r, "delete", "group", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- pitches ---

// ListPitches handles GET /api/v1/pitches. ?q= filters by name the way
// booking emails are matched.
func (h *rosterHandler) ListPitches(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		pitches := []roster.Pitch{}
		if p, ok := h.planner.Roster().FindPitchByName(q); ok {
			pitches = append(pitches, p)
		}
		writeJSON(w, http.StatusOK, map[string]any{"pitches": pitches})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pitches": h.planner.Roster().Pitches()})
}

// GetPitch handles GET /api/v1/pitches/{id}.
func (h *rosterHandler) GetPitch(w http.ResponseWriter, r *http.Request) {
	p, err := h.planner.Roster().Pitch(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get pitch")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePitch handles POST /api/v1/pitches.
func (h *rosterHandler) CreatePitch(w http.ResponseWriter, r *http.Request) {
	var input roster.CreatePitchInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.planner.Roster().AddPitch(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "failed to create pitch")
		return
	}

	auditLog(r, "create", "pitch", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePitch handles PUT /api/v1/pitches/{id}. Sessions keep the snapshot
// taken when they were created.
func (h *rosterHandler) UpdatePitch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input roster.PitchUpdate
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.planner.Roster().UpdatePitch(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err, "failed to update pitch")
		return
	}

	auditLog(r, "update", "pitch", id)
	writeJSON(w, http.StatusOK, p)
}

// DeletePitch handles DELETE /api/v1/pitches/{id}.
func (h *rosterHandler) DeletePitch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.planner.Roster().RemovePitch(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete pitch")
		return
	}

	auditLog(r, "delete", "pitch", id)
	w.WriteHeader(http.StatusNoContent)
}
