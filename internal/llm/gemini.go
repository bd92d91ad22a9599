package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rbarros/sentex/internal/schema"
)

// GeminiProvider implements Provider on the Gemini generateContent API with
// responseSchema-constrained JSON output.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
	log        *slog.Logger
}

// Gemini API structures
type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float32        `json:"temperature"`
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiProvider creates a new Gemini adapter.
func NewGeminiProvider(config Config, log *slog.Logger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &GeminiProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
		log:        log.With("provider", "gemini"),
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// Extract runs one schema-constrained extraction attempt.
func (p *GeminiProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	ctx, cancel := timeoutContext(ctx, p.config.Timeout)
	defer cancel()

	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: req.Prompt}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Document}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      req.Model.Temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema.GeminiDefinition(),
		},
	}

	start := time.Now()
	p.log.Debug("extract.call", "model", req.Model.ModelID, "document_bytes", len(req.Document))

	var resp geminiResponse
	err := withRetry(ctx, defaultRetryAttempts, func() error {
		var callErr error
		resp, callErr = p.generateContent(ctx, req.Model.ModelID, body)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &VendorError{Provider: p.Name(), Message: errEmptyResponse.Error()}
	}

	var payload strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		payload.WriteString(part.Text)
	}

	data, err := decodePayload(p.Name(), []byte(strings.TrimSpace(payload.String())))
	if err != nil {
		return nil, err
	}

	in, out := normalizeGeminiUsage(resp)
	p.log.Debug("extract.ok",
		"model", req.Model.ModelID,
		"input_tokens", in,
		"output_tokens", out,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &ExtractResponse{Data: data, InputTokens: in, OutputTokens: out}, nil
}

// normalizeGeminiUsage folds thinking tokens into the output count:
// candidatesTokenCount excludes them, and leaving them out would make
// reasoning models look artificially cheap next to the chat-completions
// vendors. Absent counters stay zero.
func normalizeGeminiUsage(resp geminiResponse) (inputTokens, outputTokens int) {
	usage := resp.UsageMetadata
	return usage.PromptTokenCount, usage.CandidatesTokenCount + usage.ThoughtsTokenCount
}

func (p *GeminiProvider) generateContent(ctx context.Context, modelID string, body geminiRequest) (geminiResponse, error) {
	var out geminiResponse

	payload, err := json.Marshal(body)
	if err != nil {
		return out, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, modelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return out, &VendorError{Provider: p.Name(), Message: err.Error()}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return out, &VendorError{Provider: p.Name(), Message: fmt.Sprintf("read response: %v", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr geminiError
		message := strings.TrimSpace(string(respBody))
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return out, &VendorError{Provider: p.Name(), StatusCode: httpResp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(respBody, &out); err != nil {
		return out, &VendorError{Provider: p.Name(), Message: fmt.Sprintf("decode response: %v", err)}
	}
	return out, nil
}
