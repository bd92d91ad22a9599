package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rbarros/sentex/internal/model"
	"github.com/rbarros/sentex/internal/taxonomy"
)

const validPayload = `{
	"decision_type": "sentenca_merito",
	"claims": [
		{
			"claim_type": 13719,
			"requested_value": null,
			"outcome": "procedente",
			"awarded_value": {"amount": 1500.50, "currency": "BRL", "is_liquidacao": false},
			"reflexos": "sim"
		}
	],
	"custas": {"amount": 200, "currency": "BRL", "is_liquidacao": null},
	"gratuidade": "concedida",
	"valor_total_decisao": null
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testModelConfig(t *testing.T, key string) model.ModelConfig {
	t.Helper()
	mc, err := model.LookupModel(key)
	if err != nil {
		t.Fatalf("lookup %s: %v", key, err)
	}
	return mc
}

// chatCompletionServer is a fake OpenAI-compatible endpoint.
func chatCompletionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func chatCompletionBody(content string, promptTokens, completionTokens int) string {
	resp := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4.1",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestOpenAIExtract_Success(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any

	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(validPayload, 1200, 310))
	})

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "Vistos os autos...",
		Prompt:   "Extraia os pedidos.",
		Model:    testModelConfig(t, "gpt-4.1"),
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	// Prompt and document ride separate message roles.
	messages := gotReq["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	if system["role"] != "system" || system["content"] != "Extraia os pedidos." {
		t.Errorf("system message = %v", system)
	}
	if user["role"] != "user" || user["content"] != "Vistos os autos..." {
		t.Errorf("user message = %v", user)
	}

	format := gotReq["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("response_format type = %v", format["type"])
	}

	if resp.InputTokens != 1200 || resp.OutputTokens != 310 {
		t.Errorf("usage = %d/%d, want 1200/310", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Data == nil || resp.Data.DecisionType != taxonomy.DecisionSentencaMerito {
		t.Fatalf("data = %+v", resp.Data)
	}
	if len(resp.Data.Claims) != 1 {
		t.Fatalf("got %d claims, want 1", len(resp.Data.Claims))
	}
	claim := resp.Data.Claims[0]
	if claim.ClaimType.Code() != 13719 {
		t.Errorf("claim code = %d, want 13719", claim.ClaimType.Code())
	}
	if claim.AwardedValue == nil || claim.AwardedValue.Amount != 1500.50 {
		t.Errorf("awarded value = %+v", claim.AwardedValue)
	}
}

func TestOpenAIExtract_NullOptionalEnums(t *testing.T) {
	// Strict decoding makes the model answer every field; undiscussed
	// gratuidade/reflexos come back as explicit nulls and must decode into
	// a successful attempt with those fields unset.
	payload := `{
		"decision_type": "sentenca_merito",
		"claims": [
			{
				"claim_type": 13719,
				"requested_value": null,
				"outcome": "improcedente",
				"awarded_value": null,
				"reflexos": null
			}
		],
		"custas": null,
		"gratuidade": null,
		"valor_total_decisao": null
	}`

	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(payload, 600, 90))
	})

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-4.1"),
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if resp.Data.Gratuidade != nil {
		t.Errorf("gratuidade = %v, want nil", *resp.Data.Gratuidade)
	}
	claim := resp.Data.Claims[0]
	if claim.Reflexos != nil || claim.AwardedValue != nil {
		t.Errorf("optional claim fields not nil: %+v", claim)
	}
}

func TestOpenAIExtract_AuthErrorIsVendorError(t *testing.T) {
	var calls atomic.Int32
	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`)
	})

	p, err := NewOpenAIProvider(Config{APIKey: "bad-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, err = p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-4.1"),
	})

	var vendor *VendorError
	if !errors.As(err, &vendor) {
		t.Fatalf("got %T (%v), want VendorError", err, err)
	}
	if vendor.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", vendor.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("auth failure retried %d times, want a single call", calls.Load())
	}
}

func TestOpenAIExtract_RetriesThrottling(t *testing.T) {
	var calls atomic.Int32
	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "rate limit", "type": "tokens"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(validPayload, 100, 40))
	})

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-4.1"),
	})
	if err != nil {
		t.Fatalf("extract after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("got %d calls, want 2 (one throttled, one served)", calls.Load())
	}
	if resp.InputTokens != 100 {
		t.Errorf("usage from retried call = %d, want 100", resp.InputTokens)
	}
}

func TestOpenAIExtract_NonConformingPayload(t *testing.T) {
	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(`{"decision_type": "recurso"}`, 50, 10))
	})

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, err = p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-4.1"),
	})

	var decode *DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("got %T (%v), want DecodeError", err, err)
	}
}

func TestOpenAIExtract_UnmappedCodeNeverCoerced(t *testing.T) {
	payload := strings.Replace(validPayload, "13719", "99999", 1)
	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(payload, 50, 10))
	})

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-4.1"),
	})
	if err == nil {
		t.Fatalf("expected failure, got %+v", resp)
	}

	var unmapped *taxonomy.UnmappedCodeError
	if !errors.As(err, &unmapped) {
		t.Fatalf("got %v, want an unmapped-code error in the chain", err)
	}
	if unmapped.Code != 99999 {
		t.Errorf("unmapped code = %d, want 99999", unmapped.Code)
	}
}

func TestGroqExtract_UsesOpenAIWireFormat(t *testing.T) {
	srv := chatCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionBody(validPayload, 800, 120))
	})

	p, err := NewGroqProvider(Config{APIKey: "gsk-test", BaseURL: srv.URL + "/v1"}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.Name() != "groq" {
		t.Errorf("name = %q", p.Name())
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gpt-oss-120b"),
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if resp.InputTokens != 800 || resp.OutputTokens != 120 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestNewProviders_RequireAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}, testLogger()); err == nil {
		t.Error("openai: expected error for missing API key")
	}
	if _, err := NewGroqProvider(Config{}, testLogger()); err == nil {
		t.Error("groq: expected error for missing API key")
	}
	if _, err := NewGeminiProvider(Config{}, testLogger()); err == nil {
		t.Error("gemini: expected error for missing API key")
	}
}
