// Package model defines the labor-judgment data model shared across the
// extraction pipeline: the nested extraction schema types, the per-attempt
// result, the static model catalog and the application configuration.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/rbarros/sentex/internal/taxonomy"
)

// Money is a monetary value as extracted from a judgment. Amount is not
// required to be non-negative: settlements occasionally carry negative
// adjustments and the source data does not enforce a sign.
type Money struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	IsLiquidacao *bool   `json:"is_liquidacao,omitempty"`
}

// ClaimDecision is one adjudicated line-item of a judgment.
type ClaimDecision struct {
	ClaimType      taxonomy.ClaimType        `json:"claim_type"`
	RequestedValue *Money                    `json:"requested_value,omitempty"`
	Outcome        taxonomy.DecisionOutcome  `json:"outcome"`
	AwardedValue   *Money                    `json:"awarded_value,omitempty"`
	Reflexos       *taxonomy.Reflexos        `json:"reflexos,omitempty"`
}

// UnmarshalJSON accepts the claim type either as the numeric taxonomy code
// (what providers are constrained to emit) or as the packed "(CODE) Label"
// string (what serialized result tables carry). Either way the code must
// resolve through the taxonomy; unknown codes surface as
// *taxonomy.UnmappedCodeError and fail the attempt.
func (d *ClaimDecision) UnmarshalJSON(data []byte) error {
	type alias ClaimDecision
	aux := struct {
		ClaimType json.RawMessage `json:"claim_type"`
		*alias
	}{alias: (*alias)(d)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ct, err := claimTypeFromJSON(aux.ClaimType)
	if err != nil {
		return err
	}
	d.ClaimType = ct
	return nil
}

func claimTypeFromJSON(raw json.RawMessage) (taxonomy.ClaimType, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("claim_type is required")
	}

	var code int
	if err := json.Unmarshal(raw, &code); err == nil {
		return taxonomy.FromCode(code)
	}

	var packed string
	if err := json.Unmarshal(raw, &packed); err != nil {
		return "", fmt.Errorf("claim_type must be a taxonomy code or packed label: %w", err)
	}
	ct := taxonomy.ClaimType(packed)
	resolved, err := taxonomy.FromCode(ct.Code())
	if err != nil {
		return "", err
	}
	if resolved != ct {
		return "", fmt.Errorf("claim_type %q does not match taxonomy entry %q", packed, resolved)
	}
	return resolved, nil
}

// LaborSentenceExtraction is the full structured result for one document.
// Claims preserve extraction order; the order carries no meaning beyond
// display.
type LaborSentenceExtraction struct {
	DecisionType      taxonomy.DecisionType `json:"decision_type"`
	Claims            []ClaimDecision       `json:"claims"`
	Custas            *Money                `json:"custas,omitempty"`
	Gratuidade        *taxonomy.Gratuidade  `json:"gratuidade,omitempty"`
	ValorTotalDecisao *Money                `json:"valor_total_decisao,omitempty"`
}

// ExtractionResult is the outcome of one (document, model) attempt. It is
// created once, never mutated, and consumed to build one row of the output
// table. Success is true iff ExtractedData is present and ErrorMessage empty.
type ExtractionResult struct {
	ModelName     string                   `json:"model_name"`
	Provider      string                   `json:"provider"`
	InputTokens   int                      `json:"input_tokens"`
	OutputTokens  int                      `json:"output_tokens"`
	ElapsedSecs   float64                  `json:"extraction_time_seconds"`
	Success       bool                     `json:"success"`
	ErrorMessage  string                   `json:"error_message,omitempty"`
	ExtractedData *LaborSentenceExtraction `json:"extracted_data,omitempty"`
}

// NewSuccessResult builds a success result; the invariant between Success,
// ErrorMessage and ExtractedData is established here, not by callers.
func NewSuccessResult(cfg ModelConfig, inTokens, outTokens int, elapsed float64, data *LaborSentenceExtraction) ExtractionResult {
	return ExtractionResult{
		ModelName:     cfg.Name,
		Provider:      string(cfg.Provider),
		InputTokens:   inTokens,
		OutputTokens:  outTokens,
		ElapsedSecs:   elapsed,
		Success:       true,
		ExtractedData: data,
	}
}

// NewFailureResult builds a failure result carrying a best-effort input token
// estimate so failed attempts stay comparable in cost reporting.
func NewFailureResult(cfg ModelConfig, estInputTokens int, elapsed float64, err error) ExtractionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ExtractionResult{
		ModelName:    cfg.Name,
		Provider:     string(cfg.Provider),
		InputTokens:  estInputTokens,
		ElapsedSecs:  elapsed,
		Success:      false,
		ErrorMessage: msg,
	}
}

// Consistent reports whether the success/data/error invariant holds.
func (r ExtractionResult) Consistent() bool {
	if r.Success {
		return r.ExtractedData != nil && r.ErrorMessage == ""
	}
	return r.ExtractedData == nil && r.ErrorMessage != ""
}
