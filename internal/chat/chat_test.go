package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/babel/internal/ai"
	"github.com/MikeSquared-Agency/babel/internal/conversation"
)

type fakeCompletion struct {
	reply  string
	err    error
	prompt string
	opts   ai.Options
}

func (f *fakeCompletion) Generate(_ context.Context, prompt string, opts ai.Options) (string, error) {
	f.prompt = prompt
	f.opts = opts
	return f.reply, f.err
}

type fakeTranscription struct {
	text string
	err  error
}

func (f *fakeTranscription) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func newService(c ai.Completion, tr ai.Transcription) *Service {
	return New(c, tr, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuildTranscript(t *testing.T) {
	history := []conversation.Message{
		{Role: conversation.RoleUser, Text: "Hello"},
		{Role: "system", Text: "ignored"},
		{Role: conversation.RoleAI, Text: "Bonjour", Language: "French"},
	}

	got := BuildTranscript(history)
	want := "User: Hello\nAI: Bonjour\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildTranscript_Empty(t *testing.T) {
	if got := BuildTranscript(nil); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestReply_Prompt(t *testing.T) {
	c := &fakeCompletion{reply: "Ciao!"}
	s := newService(c, nil)

	history := []conversation.Message{
		{Role: conversation.RoleUser, Text: "Hi"},
		{Role: conversation.RoleAI, Text: "Salve"},
	}
	reply, err := s.Reply(context.Background(), "How are you?", "Italian", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Ciao!" {
		t.Errorf("expected 'Ciao!', got %q", reply)
	}

	want := "You are a helpful AI assistant. Respond naturally in Italian. Do not repeat yourself.\n\n" +
		"Conversation:\nUser: Hi\nAI: Salve\nUser: How are you?\nAI:"
	if c.prompt != want {
		t.Errorf("unexpected prompt:\n%q\nwant:\n%q", c.prompt, want)
	}
	if c.opts.MaxTokens != 256 || c.opts.Temperature != 0.7 {
		t.Errorf("unexpected options %+v", c.opts)
	}
}

func TestReply_EmptyCompletion(t *testing.T) {
	s := newService(&fakeCompletion{}, nil)

	reply, err := s.Reply(context.Background(), "Hi", "French", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "No reply" {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestReply_ProviderError(t *testing.T) {
	s := newService(&fakeCompletion{err: errors.New("rate limited")}, nil)

	_, err := s.Reply(context.Background(), "Hi", "French", nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestTargetLanguage(t *testing.T) {
	s := newService(nil, nil)
	if got := s.TargetLanguage(""); got != "French" {
		t.Errorf("expected French default, got %q", got)
	}
	if got := s.TargetLanguage("Korean"); got != "Korean" {
		t.Errorf("expected Korean, got %q", got)
	}

	custom := New(nil, nil, "German", slog.Default())
	if got := custom.TargetLanguage(""); got != "German" {
		t.Errorf("expected configured default German, got %q", got)
	}
}

func TestTranscribe(t *testing.T) {
	s := newService(nil, &fakeTranscription{text: "hola"})
	text, err := s.Transcribe(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hola" {
		t.Errorf("expected 'hola', got %q", text)
	}
}

func TestTranscribe_Empty(t *testing.T) {
	s := newService(nil, &fakeTranscription{})
	if _, err := s.Transcribe(context.Background(), []byte("audio")); !errors.Is(err, ErrEmptyTranscription) {
		t.Errorf("expected ErrEmptyTranscription, got %v", err)
	}
}

func TestTranslateToEnglish(t *testing.T) {
	c := &fakeCompletion{reply: "Hello"}
	s := newService(c, nil)

	got, err := s.TranslateToEnglish(context.Background(), "Bonjour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello" {
		t.Errorf("expected 'Hello', got %q", got)
	}
	if c.prompt != "Translate the following text to English. Only provide the translation, nothing else:\n\nBonjour" {
		t.Errorf("unexpected prompt %q", c.prompt)
	}
	if c.opts.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %f", c.opts.Temperature)
	}
}

func TestTranslateToEnglish_EmptyCompletion(t *testing.T) {
	s := newService(&fakeCompletion{}, nil)
	got, err := s.TranslateToEnglish(context.Background(), "Bonjour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Translation failed" {
		t.Errorf("expected fallback, got %q", got)
	}
}
