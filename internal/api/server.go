package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/babel/internal/chat"
	"github.com/MikeSquared-Agency/babel/internal/conversation"
	"github.com/MikeSquared-Agency/babel/internal/metrics"
)

//go:embed web/index.html
var indexHTML []byte

const defaultMaxUploadBytes = 32 << 20

type Server struct {
	router *chi.Mux
	srv    *http.Server

	store          *conversation.Store
	chat           *chat.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewServer wires every route. m may be nil to run without /metrics.
func NewServer(port int, store *conversation.Store, svc *chat.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(cors)
	router.Use(recoverJSON(logger))
	if m != nil {
		router.Use(m.Middleware)
	}

	s := &Server{
		router:         router,
		store:          store,
		chat:           svc,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}

	router.Get("/", s.index)
	router.Get("/health", s.health)
	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/history", s.history)
		r.Post("/save-message", s.saveMessage)
		r.Post("/clear-history", s.clearHistory)
		r.Post("/chat", s.chatText)
		r.Post("/chat-audio", s.chatAudio)
		r.Post("/translate-to-english", s.translateToEnglish)
	})

	router.Mount("/internal/sessions/{sessionId}", store.Handler())

	router.NotFound(s.capabilities)
	router.MethodNotAllowed(s.capabilities)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// SetMaxUploadBytes bounds multipart audio uploads.
func (s *Server) SetMaxUploadBytes(n int64) {
	if n > 0 {
		s.maxUploadBytes = n
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) capabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AI Multilingual Chatbot API",
		"endpoints": map[string]string{
			"GET /":                          "Web interface",
			"GET /api/history":               "Conversation history (?sessionId=)",
			"POST /api/save-message":         "Append a message to a session",
			"POST /api/clear-history":        "Clear a session",
			"POST /api/chat":                 "Send message (typed)",
			"POST /api/chat-audio":           "Send message (audio)",
			"POST /api/translate-to-english": "Translate text to English",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
