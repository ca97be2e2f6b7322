package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/babel/internal/chat"
	"github.com/MikeSquared-Agency/babel/internal/conversation"
)

const multipartMemory = 8 << 20

type saveMessageRequest struct {
	SessionID string            `json:"sessionId"`
	Role      conversation.Role `json:"role"`
	Text      string            `json:"text"`
	Language  string            `json:"language"`
}

type clearHistoryRequest struct {
	SessionID string `json:"sessionId"`
}

type chatRequest struct {
	Text           string          `json:"text"`
	TargetLanguage string          `json:"targetLanguage"`
	History        json.RawMessage `json:"history"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	TargetLanguage string `json:"targetLanguage"`
}

type chatAudioResponse struct {
	Original       string `json:"original"`
	Reply          string `json:"reply"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateRequest struct {
	Text string `json:"text"`
}

// decodeJSON reads a JSON body. An empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parseHistory accepts whatever the client sent as prior turns. Anything that
// is not an array of message objects contributes nothing to the transcript.
func parseHistory(raw json.RawMessage) []conversation.Message {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	history := make([]conversation.Message, 0, len(items))
	for _, item := range items {
		var turn struct {
			Role conversation.Role `json:"role"`
			Text string            `json:"text"`
		}
		if json.Unmarshal(item, &turn) != nil {
			continue
		}
		history = append(history, conversation.Message{Role: turn.Role, Text: turn.Text})
	}
	return history
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "No sessionId provided")
		return
	}

	history, err := s.store.History(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to load history", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) saveMessage(w http.ResponseWriter, r *http.Request) {
	var req saveMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "No sessionId provided")
		return
	}

	if _, err := s.store.Append(r.Context(), req.SessionID, req.Role, req.Text, req.Language); err != nil {
		s.logger.Error("failed to save message", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	var req clearHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "No sessionId provided")
		return
	}

	if err := s.store.Clear(r.Context(), req.SessionID); err != nil {
		s.logger.Error("failed to clear history", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) chatText(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	lang := s.chat.TargetLanguage(req.TargetLanguage)
	reply, err := s.chat.Reply(r.Context(), req.Text, lang, parseHistory(req.History))
	if err != nil {
		s.logger.Error("chat failed", "target_language", lang, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, TargetLanguage: lang})
}

func (s *Server) chatAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("read audio: %v", err))
		return
	}

	var history []conversation.Message
	if raw := r.FormValue("history"); raw != "" {
		if !json.Valid([]byte(raw)) {
			writeError(w, http.StatusBadRequest, "invalid history JSON")
			return
		}
		history = parseHistory(json.RawMessage(raw))
	}
	lang := s.chat.TargetLanguage(r.FormValue("targetLanguage"))

	original, err := s.chat.Transcribe(r.Context(), audio)
	if errors.Is(err, chat.ErrEmptyTranscription) {
		writeError(w, http.StatusInternalServerError, "Failed to transcribe audio")
		return
	}
	if err != nil {
		s.logger.Error("transcription failed", "audio_bytes", len(audio), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply, err := s.chat.Reply(r.Context(), original, lang, history)
	if err != nil {
		s.logger.Error("chat failed", "target_language", lang, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatAudioResponse{Original: original, Reply: reply, TargetLanguage: lang})
}

func (s *Server) translateToEnglish(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	translation, err := s.chat.TranslateToEnglish(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("translation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translation": translation})
}
