package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rbarros/sentex/internal/taxonomy"
)

func TestClaimDecision_UnmarshalNumericCode(t *testing.T) {
	payload := `{
		"claim_type": 13719,
		"outcome": "procedente",
		"awarded_value": {"amount": 1200, "currency": "BRL"}
	}`

	var d ClaimDecision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if d.ClaimType.Code() != 13719 {
		t.Errorf("code = %d, want 13719", d.ClaimType.Code())
	}
	if d.ClaimType.Description() != "FGTS" {
		t.Errorf("description = %q, want FGTS", d.ClaimType.Description())
	}
	if d.Outcome != taxonomy.OutcomeProcedente {
		t.Errorf("outcome = %q", d.Outcome)
	}
	if d.AwardedValue == nil || d.AwardedValue.Amount != 1200 {
		t.Errorf("awarded value = %+v", d.AwardedValue)
	}
	if d.RequestedValue != nil || d.Reflexos != nil {
		t.Error("absent optional fields must stay nil")
	}
}

func TestClaimDecision_UnmarshalPackedLabel(t *testing.T) {
	payload := `{"claim_type": "(13719) FGTS", "outcome": "improcedente"}`

	var d ClaimDecision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ClaimType.Code() != 13719 {
		t.Errorf("code = %d, want 13719", d.ClaimType.Code())
	}
}

func TestClaimDecision_UnmappedCodeSurfaces(t *testing.T) {
	payload := `{"claim_type": 424242, "outcome": "procedente"}`

	var d ClaimDecision
	err := json.Unmarshal([]byte(payload), &d)

	var unmapped *taxonomy.UnmappedCodeError
	if !errors.As(err, &unmapped) {
		t.Fatalf("got %v, want UnmappedCodeError", err)
	}
	if unmapped.Code != 424242 {
		t.Errorf("code = %d, want 424242", unmapped.Code)
	}
}

func TestClaimDecision_MarshalKeepsPackedLabel(t *testing.T) {
	ct, err := taxonomy.FromCode(13719)
	if err != nil {
		t.Fatalf("from code: %v", err)
	}

	data, err := json.Marshal(ClaimDecision{ClaimType: ct, Outcome: taxonomy.OutcomeProcedente})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if raw["claim_type"] != "(13719) FGTS" {
		t.Errorf("claim_type serialized as %v, want the packed label", raw["claim_type"])
	}
}

func TestExtractionResult_Invariant(t *testing.T) {
	cfg, err := LookupModel("gpt-4.1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	success := NewSuccessResult(cfg, 1000, 200, 3.2, &LaborSentenceExtraction{
		DecisionType: taxonomy.DecisionSentencaMerito,
	})
	if !success.Success || success.ExtractedData == nil || success.ErrorMessage != "" {
		t.Errorf("success result inconsistent: %+v", success)
	}
	if !success.Consistent() {
		t.Error("Consistent() = false for a constructor-built success")
	}

	failure := NewFailureResult(cfg, 900, 1.1, errors.New("timeout"))
	if failure.Success || failure.ExtractedData != nil || failure.ErrorMessage == "" {
		t.Errorf("failure result inconsistent: %+v", failure)
	}
	if !failure.Consistent() {
		t.Error("Consistent() = false for a constructor-built failure")
	}
	if failure.InputTokens != 900 {
		t.Errorf("failure kept %d input tokens, want the 900 estimate", failure.InputTokens)
	}

	broken := ExtractionResult{Success: true}
	if broken.Consistent() {
		t.Error("Consistent() = true for success without data")
	}
}

func TestLookupModel(t *testing.T) {
	cfg, err := LookupModel("gemini-2.5-pro")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cfg.Provider != ProviderGemini || cfg.Key != "gemini-2.5-pro" {
		t.Errorf("config = %+v", cfg)
	}

	_, err = LookupModel("nonexistent")
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownModelError", err)
	}
}

func TestModelKeys_SortedAndComplete(t *testing.T) {
	keys := ModelKeys()
	if len(keys) != 10 {
		t.Errorf("catalog has %d keys", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
	for _, key := range keys {
		if _, err := LookupModel(key); err != nil {
			t.Errorf("listed key %q does not resolve: %v", key, err)
		}
	}
}

func TestModelConfig_Cost(t *testing.T) {
	cfg := ModelConfig{PriceInPerMTok: 2.0, PriceOutPerMTok: 8.0}

	got := cfg.Cost(1_000_000, 500_000)
	if got != 6.0 {
		t.Errorf("cost = %v, want 6.0", got)
	}
	if cfg.Cost(0, 0) != 0 {
		t.Errorf("zero usage cost = %v", cfg.Cost(0, 0))
	}
}
