package conversation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newSessionRouter(s *Store) http.Handler {
	r := chi.NewRouter()
	r.Mount("/sessions/{sessionId}", s.Handler())
	return r
}

func TestHandler_AddThenHistory(t *testing.T) {
	s := newTestStore(nil)
	h := newSessionRouter(s)

	req := httptest.NewRequest("POST", "/sessions/abc/add", strings.NewReader(`{"role":"user","text":"Hi","language":""}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var addResp struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	json.NewDecoder(w.Body).Decode(&addResp)
	if !addResp.Success || addResp.Count != 1 {
		t.Errorf("unexpected add response %+v", addResp)
	}

	req = httptest.NewRequest("GET", "/sessions/abc/history", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var histResp struct {
		History []Message `json:"history"`
	}
	if err := json.NewDecoder(w.Body).Decode(&histResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(histResp.History) != 1 || histResp.History[0].Text != "Hi" {
		t.Errorf("unexpected history %+v", histResp.History)
	}
}

func TestHandler_Clear(t *testing.T) {
	s := newTestStore(nil)
	h := newSessionRouter(s)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/sessions/abc/add", strings.NewReader(`{"role":"user","text":"Hi"}`)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/abc/clear", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/abc/history", nil))
	if !strings.Contains(w.Body.String(), `"history":[]`) {
		t.Errorf("expected empty history array, got %s", w.Body.String())
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := newSessionRouter(newTestStore(nil))

	for _, tc := range []struct{ method, path string }{
		{"GET", "/sessions/abc/nope"},
		{"GET", "/sessions/abc/add"},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
	}
}
