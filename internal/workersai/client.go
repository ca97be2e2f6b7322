// Package workersai talks to the Cloudflare Workers AI REST API for text
// generation and Whisper transcription.
package workersai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/babel/internal/ai"
)

const defaultBaseURL = "https://api.cloudflare.com/client/v4/accounts"

const (
	DefaultCompletionModel    = "@cf/meta/llama-3.1-8b-instruct"
	DefaultTranscriptionModel = "@cf/openai/whisper"
)

type Client struct {
	accountID          string
	apiToken           string
	completionModel    string
	transcriptionModel string
	baseURL            string
	client             *http.Client
}

var (
	_ ai.Completion    = (*Client)(nil)
	_ ai.Transcription = (*Client)(nil)
)

func NewClient(accountID, apiToken, completionModel, transcriptionModel string) *Client {
	if completionModel == "" {
		completionModel = DefaultCompletionModel
	}
	if transcriptionModel == "" {
		transcriptionModel = DefaultTranscriptionModel
	}
	return &Client{
		accountID:          accountID,
		apiToken:           apiToken,
		completionModel:    completionModel,
		transcriptionModel: transcriptionModel,
		baseURL:            defaultBaseURL,
		client:             &http.Client{Timeout: 120 * time.Second},
	}
}

// SetBaseURL points the client at another endpoint, e.g. an AI Gateway or a test server.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type envelope[T any] struct {
	Result  T          `json:"result"`
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type generateResult struct {
	Response string `json:"response"`
}

type transcribeResult struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Generate runs the completion model with the prompt as a single user message.
// An empty response is returned as "" without error.
func (c *Client) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	body, err := json.Marshal(generateRequest{
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var out envelope[generateResult]
	if err := c.run(ctx, c.completionModel, "application/json", body, &out); err != nil {
		return "", err
	}
	return out.Result.Response, nil
}

// Transcribe sends the raw audio bytes to the transcription model.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var out envelope[transcribeResult]
	if err := c.run(ctx, c.transcriptionModel, "application/octet-stream", audio, &out); err != nil {
		return "", err
	}
	return out.Result.Text, nil
}

func (c *Client) run(ctx context.Context, model, contentType string, body []byte, out any) error {
	url := fmt.Sprintf("%s/%s/ai/run/%s", c.baseURL, c.accountID, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp envelope[json.RawMessage]
		if json.Unmarshal(respBody, &errResp) == nil && len(errResp.Errors) > 0 {
			return fmt.Errorf("api error %d: %d %s", resp.StatusCode, errResp.Errors[0].Code, errResp.Errors[0].Message)
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
