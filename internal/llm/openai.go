package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rbarros/sentex/internal/schema"
)

// OpenAIProvider implements Provider on the OpenAI chat completions API with
// json_schema structured outputs.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	log    *slog.Logger
}

// NewOpenAIProvider creates a new OpenAI adapter.
func NewOpenAIProvider(config Config, log *slog.Logger) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		log:    log.With("provider", "openai"),
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// Extract runs one schema-constrained extraction attempt.
func (p *OpenAIProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	return chatExtract(ctx, p.client, p.Name(), p.config, p.log, req)
}

// chatExtract is the shared chat-completions path. Groq speaks the same wire
// format, so both adapters funnel through here with their own client, name
// and usage semantics handled by normalizeChatUsage.
func chatExtract(ctx context.Context, client *openai.Client, provider string, config Config, log *slog.Logger, req ExtractRequest) (*ExtractResponse, error) {
	ctx, cancel := timeoutContext(ctx, config.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model.ModelID,
		Temperature: req.Model.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Document},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: schema.JSON(),
				Strict: true,
			},
		},
	}

	start := time.Now()
	log.Debug("extract.call", "model", req.Model.ModelID, "document_bytes", len(req.Document))

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, defaultRetryAttempts, func() error {
		var callErr error
		resp, callErr = client.CreateChatCompletion(ctx, chatReq)
		if callErr != nil {
			return classifyOpenAIError(provider, callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &VendorError{Provider: provider, Message: errEmptyResponse.Error()}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	data, err := decodePayload(provider, []byte(content))
	if err != nil {
		return nil, err
	}

	in, out := normalizeChatUsage(resp.Usage)
	log.Debug("extract.ok",
		"model", req.Model.ModelID,
		"input_tokens", in,
		"output_tokens", out,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &ExtractResponse{Data: data, InputTokens: in, OutputTokens: out}, nil
}

// normalizeChatUsage maps a chat-completions usage block onto plain counts.
// completion_tokens already includes reasoning tokens on this wire format;
// the details block only matters when a backend reports reasoning separately
// with an empty completion counter.
func normalizeChatUsage(usage openai.Usage) (inputTokens, outputTokens int) {
	inputTokens = usage.PromptTokens
	outputTokens = usage.CompletionTokens
	if outputTokens == 0 && usage.CompletionTokensDetails != nil {
		outputTokens = usage.CompletionTokensDetails.ReasoningTokens
	}
	return inputTokens, outputTokens
}

// classifyOpenAIError wraps a go-openai error as a VendorError so retry and
// failure-row handling can reason about it uniformly.
func classifyOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &VendorError{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &VendorError{Provider: provider, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	return &VendorError{Provider: provider, Message: err.Error()}
}
