// Package ai defines the provider capabilities the chatbot delegates to.
package ai

import "context"

// Options tune a single completion call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// DefaultOptions matches the conversational reply settings.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   256,
		Temperature: 0.7,
	}
}

// Completion turns a prompt into generated text. Implementations send the
// prompt as a single user message.
type Completion interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Transcription turns raw audio bytes into text.
type Transcription interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
