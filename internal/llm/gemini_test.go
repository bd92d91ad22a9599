package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiResponseBody(text string, prompt, candidates, thoughts int) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     prompt,
			"candidatesTokenCount": candidates,
			"thoughtsTokenCount":   thoughts,
			"totalTokenCount":      prompt + candidates + thoughts,
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeminiExtract_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiResponseBody(validPayload, 1500, 200, 700))
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(Config{APIKey: "gem-key", BaseURL: srv.URL}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Extract(context.Background(), ExtractRequest{
		Document: "Vistos os autos...",
		Prompt:   "Extraia os pedidos.",
		Model:    testModelConfig(t, "gemini-2.5-pro"),
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if gotPath != "/v1beta/models/gemini-2.5-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "gem-key" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}

	// Prompt travels as system_instruction, document as the user content.
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "Extraia os pedidos." {
		t.Errorf("system_instruction = %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "Vistos os autos..." {
		t.Errorf("contents = %+v", gotReq.Contents)
	}
	if gotReq.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q", gotReq.GenerationConfig.ResponseMimeType)
	}
	if gotReq.GenerationConfig.ResponseSchema == nil {
		t.Error("responseSchema missing from generationConfig")
	}

	// Thinking tokens fold into the output count.
	if resp.InputTokens != 1500 || resp.OutputTokens != 900 {
		t.Errorf("usage = %d/%d, want 1500/900", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Data == nil || len(resp.Data.Claims) != 1 {
		t.Fatalf("data = %+v", resp.Data)
	}
}

func TestGeminiExtract_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": 400, "message": "invalid schema", "status": "INVALID_ARGUMENT"}}`)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(Config{APIKey: "gem-key", BaseURL: srv.URL}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, err = p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gemini-2.5-flash"),
	})

	var vendor *VendorError
	if !errors.As(err, &vendor) {
		t.Fatalf("got %T (%v), want VendorError", err, err)
	}
	if vendor.StatusCode != http.StatusBadRequest || vendor.Message != "invalid schema" {
		t.Errorf("vendor error = %+v", vendor)
	}
	if vendor.Transient() {
		t.Error("400 must not be classified as transient")
	}
}

func TestGeminiExtract_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates": [], "usageMetadata": {"promptTokenCount": 10}}`)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(Config{APIKey: "gem-key", BaseURL: srv.URL}, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, err = p.Extract(context.Background(), ExtractRequest{
		Document: "texto", Prompt: "prompt", Model: testModelConfig(t, "gemini-2.5-pro"),
	})

	var vendor *VendorError
	if !errors.As(err, &vendor) {
		t.Fatalf("got %T (%v), want VendorError", err, err)
	}
}

func TestNormalizeGeminiUsage_AbsentCountersAreZero(t *testing.T) {
	in, out := normalizeGeminiUsage(geminiResponse{})
	if in != 0 || out != 0 {
		t.Errorf("usage = %d/%d, want 0/0", in, out)
	}
}
