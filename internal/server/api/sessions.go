package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/airdrum/internal/report"
	"github.com/ayusman/airdrum/internal/store"
)

// SessionHandler serves read-only session history.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id}, /api/sessions/{id}/hits
// and the HTML chart at /api/sessions/{id}/chart.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := splitPath(r.URL.Path, "/api/sessions")
	switch {
	case len(parts) == 0:
		h.list(w, r)
	case len(parts) == 1:
		h.get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "hits":
		h.hits(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "chart":
		h.chart(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type sessionResponse struct {
	*store.Session
	Counts []store.HitCount `json:"counts,omitempty"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type listHitsResponse struct {
	SessionID string       `json:"session_id"`
	Hits      []*store.Hit `json:"hits"`
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	session, ok := h.lookup(w, id)
	if !ok {
		return
	}

	counts, err := h.store.Hits().CountBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count hits")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, Counts: counts})
}

func (h *SessionHandler) hits(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}

	hits, err := h.store.Hits().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hits")
		return
	}
	if hits == nil {
		hits = []*store.Hit{}
	}

	writeJSON(w, http.StatusOK, listHitsResponse{SessionID: id, Hits: hits})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, id string) (*store.Session, bool) {
	session, err := h.store.Sessions().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) chart(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.RenderTimeline(&buf, h.store, id); err != nil {
		if errors.Is(err, report.ErrNoHits) {
			writeError(w, http.StatusNotFound, "Session has no hits")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
