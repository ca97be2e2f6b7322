package conversation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes one session's store over HTTP: GET /history, POST /add and
// POST /clear, relative to a route that captures {sessionId}.
func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/history", s.serveHistory)
	r.Post("/add", s.serveAdd)
	r.Post("/clear", s.serveClear)
	notFound := func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

type addRequest struct {
	Role     Role   `json:"role"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Store) serveHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.History(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Store) serveAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	count, err := s.Append(r.Context(), chi.URLParam(r, "sessionId"), req.Role, req.Text, req.Language)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (s *Store) serveClear(w http.ResponseWriter, r *http.Request) {
	if err := s.Clear(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
