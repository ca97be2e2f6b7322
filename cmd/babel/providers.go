package main

import (
	"fmt"

	"github.com/MikeSquared-Agency/babel/internal/ai"
	"github.com/MikeSquared-Agency/babel/internal/anthropic"
	"github.com/MikeSquared-Agency/babel/internal/config"
	"github.com/MikeSquared-Agency/babel/internal/metrics"
	"github.com/MikeSquared-Agency/babel/internal/openai"
	"github.com/MikeSquared-Agency/babel/internal/workersai"
)

const (
	providerWorkersAI = "workersai"
	providerAnthropic = "anthropic"
	providerOpenAI    = "openai"
)

// buildProviders constructs the configured completion and transcription
// providers, instrumented with m when it is non-nil.
func buildProviders(cfg config.Config, m *metrics.Metrics) (ai.Completion, ai.Transcription, error) {
	var (
		workers *workersai.Client
		oai     *openai.Client
	)
	workersClient := func() (*workersai.Client, error) {
		if workers == nil {
			if cfg.CloudflareAccountID == "" || cfg.CloudflareAPIToken == "" {
				return nil, fmt.Errorf("workersai provider requires CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN")
			}
			workers = workersai.NewClient(cfg.CloudflareAccountID, cfg.CloudflareAPIToken, cfg.CompletionModel, cfg.TranscriptionModel)
		}
		return workers, nil
	}
	openaiClient := func() (*openai.Client, error) {
		if oai == nil {
			if cfg.OpenAIAPIKey == "" {
				return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
			}
			oai = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITranscriptionModel)
		}
		return oai, nil
	}

	var completion ai.Completion
	switch cfg.CompletionProvider {
	case providerWorkersAI:
		c, err := workersClient()
		if err != nil {
			return nil, nil, err
		}
		completion = c
	case providerAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		completion = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case providerOpenAI:
		c, err := openaiClient()
		if err != nil {
			return nil, nil, err
		}
		completion = c
	default:
		return nil, nil, fmt.Errorf("unknown completion provider %q", cfg.CompletionProvider)
	}

	var transcription ai.Transcription
	switch cfg.TranscriptionProvider {
	case providerWorkersAI:
		c, err := workersClient()
		if err != nil {
			return nil, nil, err
		}
		transcription = c
	case providerOpenAI:
		c, err := openaiClient()
		if err != nil {
			return nil, nil, err
		}
		transcription = c
	default:
		return nil, nil, fmt.Errorf("unknown transcription provider %q", cfg.TranscriptionProvider)
	}

	if m != nil {
		completion = m.Completion(cfg.CompletionProvider, completion)
		transcription = m.Transcription(cfg.TranscriptionProvider, transcription)
	}
	return completion, transcription, nil
}
