// Package token provides the token-length estimate used both to admit
// documents into a batch and as fallback accounting when a vendor fails
// before reporting usage. One reference tokenizer is used across the whole
// pipeline so the admission threshold and cost comparisons stay internally
// consistent, even though real per-vendor counts differ slightly.
package token

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// ReferenceModel is the model whose encoding anchors every estimate.
const ReferenceModel = "gpt-4o"

// Estimator estimates the token length of a text. Implementations must be
// deterministic and monotonic: appending text never lowers the estimate.
type Estimator interface {
	Estimate(text string) int
}

// TiktokenEstimator is the reference estimator, backed by the gpt-4o BPE.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the reference encoding.
func NewTiktokenEstimator() (*TiktokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(ReferenceModel)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", ReferenceModel, err)
	}
	return &TiktokenEstimator{enc: enc}, nil
}

// Estimate returns the BPE token count of text.
func (e *TiktokenEstimator) Estimate(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// HeuristicEstimator approximates tokens as ceil(runes/4), the usual rough
// ratio for Latin-script text. Used when the BPE data is unavailable and in
// tests; deliberately cheap and dependency-free.
type HeuristicEstimator struct{}

// Estimate returns the heuristic token count of text.
func (HeuristicEstimator) Estimate(text string) int {
	runes := utf8.RuneCountInString(text)
	return (runes + 3) / 4
}
