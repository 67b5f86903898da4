package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/session"
)

// selectedAlias stands for the selected session in session routes.
const selectedAlias = "selected"

// targetID returns the {id} URL parameter, or "" for the selected session.
func targetID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if id == selectedAlias {
		return ""
	}
	return id
}

// sessionsHandler groups session lifecycle handlers.
type sessionsHandler struct {
	planner *planner.Service
}

func newSessionsHandler(p *planner.Service) *sessionsHandler {
	return &sessionsHandler{planner: p}
}

// sessionView adds derived display fields to a session.
type sessionView struct {
	session.Session
	EndTime   string `json:"endTime,omitempty"`
	Confirmed int    `json:"confirmed"`
	Optional  int    `json:"optional"`
	Full      bool   `json:"full"`
}

func (h *sessionsHandler) view(s session.Session) sessionView {
	end, err := h.planner.EndTime(s)
	if err != nil {
		// Stored sessions may predate time validation; render without an end.
		slog.Debug("session end time unavailable", "session_id", s.ID, "time", s.Time, "error", err)
	}
	return sessionView{
		Session:   s,
		EndTime:   end,
		Confirmed: s.Count(session.ResponseComing),
		Optional:  s.Count(session.ResponseOptional),
		Full:      s.IsFull(),
	}
}

func (h *sessionsHandler) views(items []session.Session) []sessionView {
	out := make([]sessionView, len(items))
	for i, s := range items {
		out[i] = h.view(s)
	}
	return out
}

// ListActive handles GET /api/v1/sessions.
func (h *sessionsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	store := h.planner.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":   h.views(store.Active()),
		"selectedId": store.SelectedID(),
	})
}

// ListHistory handles GET /api/v1/history.
func (h *sessionsHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.views(h.planner.Sessions().History())})
}

// GetSelected handles GET /api/v1/sessions/selected.
func (h *sessionsHandler) GetSelected(w http.ResponseWriter, r *http.Request) {
	s, err := h.planner.Sessions().Selected()
	if err != nil {
		writeError(w, http.StatusNotFound, "no_selection", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

// GetSession handles GET /api/v1/sessions/{id}; archived sessions are found too.
func (h *sessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.planner.Sessions().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

// CreateSession handles POST /api/v1/sessions.
func (h *sessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input planner.CreateSessionInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	s, err := h.planner.CreateSession(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err, "failed to create session")
		return
	}

	auditLog(r, "create", "session", s.ID, "date", s.Date, "time", s.Time)
	writeJSON(w, http.StatusCreated, h.view(s))
}

type emailRequest struct {
	Text string `json:"text"`
}

// CreateFromEmail handles POST /api/v1/sessions/from-email.
func (h *sessionsHandler) CreateFromEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	out, err := h.planner.CreateSessionFromEmail(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err, "failed to create session from email")
		return
	}

	if out.AddedPitch != nil {
		auditLog(r, "create", "pitch", out.AddedPitch.ID, "name", out.AddedPitch.Name, "source", "email")
	}
	auditLog(r, "create", "session", out.Session.ID, "source", "email")
	writeJSON(w, http.StatusCreated, out)
}

type selectRequest struct {
	SessionID string `json:"sessionId"`
}

// SelectSession handles PUT /api/v1/sessions/selected. An empty id clears the
// selection.
func (h *sessionsHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	if err := h.planner.Sessions().Select(r.Context(), req.SessionID); err != nil {
		writeServiceError(w, r, err, "failed to select session")
		return
	}

	auditLog(r, "select", "session", req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"selectedId": req.SessionID})
}

type respondRequest struct {
	Status session.ResponseStatus `json:"status"`
}

// lookupID resolves targetID for read routes, which need a concrete id.
func (h *sessionsHandler) lookupID(r *http.Request) (string, error) {
	if id := targetID(r); id != "" {
		return id, nil
	}
	s, err := h.planner.Sessions().Selected()
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// Respond handles PUT /api/v1/sessions/{id}/responses/{playerID}.
func (h *sessionsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id := targetID(r)
	playerID := chi.URLParam(r, "playerID")

	var req respondRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	s, err := h.planner.Respond(r.Context(), id, playerID, req.Status)
	if err != nil {
		writeServiceError(w, r, err, "failed to record response")
		return
	}

	auditLog(r, "respond", "session", s.ID, "player_id", playerID, "status", string(req.Status))
	writeJSON(w, http.StatusOK, h.view(s))
}

type completeRequest struct {
	Score *session.Score `json:"score"`
}

// Complete handles POST /api/v1/sessions/{id}/complete. The score is optional.
func (h *sessionsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := targetID(r)

	var req completeRequest
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	s, err := h.planner.Complete(r.Context(), id, req.Score)
	if err != nil {
		writeServiceError(w, r, err, "failed to complete session")
		return
	}

	auditLog(r, "complete", "session", s.ID)
	writeJSON(w, http.StatusOK, h.view(s))
}

// Cancel handles POST /api/v1/sessions/{id}/cancel.
func (h *sessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, err := h.planner.Cancel(r.Context(), targetID(r))
	if err != nil {
		writeServiceError(w, r, err, "failed to cancel session")
		return
	}

	auditLog(r, "cancel", "session", s.ID)
	writeJSON(w, http.StatusOK, h.view(s))
}

// ClearSession handles DELETE /api/v1/sessions/{id}: the active session is
// dropped without being archived.
func (h *sessionsHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	id := targetID(r)
	if err := h.planner.Clear(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to clear session")
		return
	}

	auditLog(r, "clear", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteHistory handles DELETE /api/v1/history/{id}.
func (h *sessionsHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.planner.DeleteHistory(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete session")
		return
	}

	auditLog(r, "delete", "history", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary handles GET /api/v1/sessions/{id}/summary as plain text, with
// the share title in a header.
func (h *sessionsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := h.lookupID(r)
	if err != nil {
		writeServiceError(w, r, err, "failed to render summary")
		return
	}
	title, text, err := h.planner.Summary(id)
	if err != nil {
		writeServiceError(w, r, err, "failed to render summary")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Share-Title", title)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// GetCalendar handles GET /api/v1/sessions/{id}/calendar[?minimal=true].
func (h *sessionsHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	minimal := false
	if v := r.URL.Query().Get("minimal"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_minimal", "minimal must be a boolean")
			return
		}
		minimal = b
	}

	id, err := h.lookupID(r)
	if err != nil {
		writeServiceError(w, r, err, "failed to build calendar link")
		return
	}
	url, err := h.planner.CalendarURL(id, minimal)
	if err != nil {
		writeServiceError(w, r, err, "failed to build calendar link")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
