package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handpiano/internal/store"
)

// SessionHandler handles HTTP requests for sessions and their presses.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/presses.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "presses":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.presses(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Frames    int    `json:"frames"`
	Presses   int    `json:"presses"`
	Active    bool   `json:"active"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type pressResponse struct {
	ID        int64  `json:"id"`
	Hand      string `json:"hand"`
	Finger    string `json:"finger"`
	Key       string `json:"key"`
	PressedAt string `json:"pressed_at"`
}

type listPressesResponse struct {
	SessionID string          `json:"session_id"`
	Presses   []pressResponse `json:"presses"`
	Counts    map[string]int  `json:"counts"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Source:    s.Source,
		Frames:    s.Frames,
		Presses:   s.Presses,
		Active:    s.Active(),
		StartedAt: formatTime(s.StartedAt),
	}
	if s.EndedAt != nil {
		resp.EndedAt = formatTime(*s.EndedAt)
	}
	return resp
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// presses handles GET /api/sessions/{id}/presses.
func (h *SessionHandler) presses(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	presses, err := h.store.Presses().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presses")
		return
	}
	counts, err := h.store.Presses().CountByKey(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count presses")
		return
	}

	response := listPressesResponse{
		SessionID: id,
		Presses:   make([]pressResponse, 0, len(presses)),
		Counts:    counts,
	}
	for _, p := range presses {
		response.Presses = append(response.Presses, pressResponse{
			ID:        p.ID,
			Hand:      p.Hand,
			Finger:    p.Finger,
			Key:       p.Key,
			PressedAt: formatTime(p.PressedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
