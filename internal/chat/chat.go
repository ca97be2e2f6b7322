// Package chat builds prompts from conversation state and runs them through
// the configured providers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/babel/internal/ai"
	"github.com/MikeSquared-Agency/babel/internal/conversation"
)

const (
	DefaultTargetLanguage = "French"

	noReply           = "No reply"
	translationFailed = "Translation failed"
)

// ErrEmptyTranscription means the transcription provider produced no text.
var ErrEmptyTranscription = errors.New("empty transcription")

var translateOptions = ai.Options{MaxTokens: 256, Temperature: 0.2}

type Service struct {
	completion      ai.Completion
	transcription   ai.Transcription
	defaultLanguage string
	logger          *slog.Logger
}

func New(completion ai.Completion, transcription ai.Transcription, defaultLanguage string, logger *slog.Logger) *Service {
	if defaultLanguage == "" {
		defaultLanguage = DefaultTargetLanguage
	}
	return &Service{
		completion:      completion,
		transcription:   transcription,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// TargetLanguage returns lang, or the service default when lang is empty.
func (s *Service) TargetLanguage(lang string) string {
	if lang == "" {
		return s.defaultLanguage
	}
	return lang
}

// Reply asks the completion provider to continue the conversation in targetLanguage.
func (s *Service) Reply(ctx context.Context, text, targetLanguage string, history []conversation.Message) (string, error) {
	s.logger.Debug("generating reply",
		"target_language", targetLanguage,
		"history_len", len(history),
		"text_len", len(text),
	)

	reply, err := s.completion.Generate(ctx, replyPrompt(targetLanguage, history, text), ai.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if reply == "" {
		return noReply, nil
	}
	return reply, nil
}

// Transcribe converts recorded audio to text.
func (s *Service) Transcribe(ctx context.Context, audio []byte) (string, error) {
	text, err := s.transcription.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if text == "" {
		return "", ErrEmptyTranscription
	}
	return text, nil
}

func (s *Service) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	translation, err := s.completion.Generate(ctx, translatePrompt(text), translateOptions)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if translation == "" {
		return translationFailed, nil
	}
	return translation, nil
}
