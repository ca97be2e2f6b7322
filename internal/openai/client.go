// Package openai adapts the OpenAI chat and audio APIs (or any compatible
// server) to the ai provider interfaces.
package openai

import (
	"bytes"
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/MikeSquared-Agency/babel/internal/ai"
)

const (
	DefaultModel              = "gpt-4o-mini"
	DefaultTranscriptionModel = goopenai.Whisper1
)

// audioFileName only tells the API which container to expect.
const audioFileName = "recording.webm"

type Client struct {
	client             *goopenai.Client
	model              string
	transcriptionModel string
}

var (
	_ ai.Completion    = (*Client)(nil)
	_ ai.Transcription = (*Client)(nil)
)

// NewClient builds a client. baseURL may be empty for api.openai.com.
func NewClient(apiKey, baseURL, model, transcriptionModel string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if transcriptionModel == "" {
		transcriptionModel = DefaultTranscriptionModel
	}
	return &Client{
		client:             goopenai.NewClientWithConfig(cfg),
		model:              model,
		transcriptionModel: transcriptionModel,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: audioFileName,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
