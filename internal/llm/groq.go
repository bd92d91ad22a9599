package llm

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Provider on Groq's OpenAI-compatible chat API.
type GroqProvider struct {
	client *openai.Client
	config Config
	log    *slog.Logger
}

// NewGroqProvider creates a new Groq adapter.
func NewGroqProvider(config Config, log *slog.Logger) (*GroqProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &GroqProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		log:    log.With("provider", "groq"),
	}, nil
}

// Name returns the provider name.
func (p *GroqProvider) Name() string { return "groq" }

// Extract runs one schema-constrained extraction attempt.
func (p *GroqProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	return chatExtract(ctx, p.client, p.Name(), p.config, p.log, req)
}
