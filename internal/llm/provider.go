// Package llm normalizes three heterogeneous vendor APIs behind one
// schema-constrained extraction capability. Each adapter submits the
// instruction prompt and the document on separate channels, requests
// structured decoding through the vendor's native mechanism, and normalizes
// usage accounting into plain input/output token counts.
package llm

import (
	"context"
	"fmt"

	"github.com/rbarros/sentex/internal/model"
)

// Provider is one vendor adapter. Implementations return either a fully
// decoded, schema-conforming extraction or a typed error; there is no partial
// success.
type Provider interface {
	// Name returns the vendor family name.
	Name() string

	// Extract runs one structured extraction attempt.
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
}

// ExtractRequest is the input for one attempt. Prompt is the instruction
// (system) channel; Document is the judgment text (user) channel. The two are
// never concatenated.
type ExtractRequest struct {
	Document string
	Prompt   string
	Model    model.ModelConfig
}

// ExtractResponse carries the decoded value plus normalized usage. Output
// tokens include any reasoning/"thinking" tokens the vendor reports
// separately, so cost comparisons stay apples-to-apples across vendors.
// Counters a vendor omits are zero, never an error.
type ExtractResponse struct {
	Data         *model.LaborSentenceExtraction
	InputTokens  int
	OutputTokens int
}

// Config holds per-vendor connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout int // seconds per request
}

// ConfigFrom converts an application provider section.
func ConfigFrom(pc model.ProviderConfig) Config {
	return Config{
		APIKey:  pc.APIKey,
		BaseURL: pc.BaseURL,
		Timeout: pc.Timeout,
	}
}

// VendorError is a transport or API-level failure reported by a vendor.
type VendorError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// Transient reports whether the failure is worth retrying: throttling,
// request timeout, or a server-side error.
func (e *VendorError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode == 408 || e.StatusCode >= 500
}

// DecodeError is a schema-validation or malformed-payload failure: the vendor
// answered, but not with a conforming extraction.
type DecodeError struct {
	Provider string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s returned non-conforming output: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
