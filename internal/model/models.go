package model

import (
	"fmt"
	"sort"
)

// Provider identifies a vendor family.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// Providers lists every vendor family an adapter exists for.
var Providers = []Provider{ProviderOpenAI, ProviderGemini, ProviderGroq}

// ModelConfig is one entry of the static model catalog. Entries are built
// once at init and immutable; extraction attempts look them up by key.
// Prices are USD per million tokens.
type ModelConfig struct {
	Key             string   `json:"key"`
	Name            string   `json:"name"`
	Provider        Provider `json:"provider"`
	ModelID         string   `json:"model_id"`
	Temperature     float32  `json:"temperature"`
	PriceInPerMTok  float64  `json:"price_input_per_million"`
	PriceOutPerMTok float64  `json:"price_output_per_million"`
}

// Cost returns the estimated USD cost of an attempt with the given usage.
func (m ModelConfig) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*m.PriceInPerMTok +
		float64(outputTokens)/1e6*m.PriceOutPerMTok
}

var modelCatalog = map[string]ModelConfig{
	"gpt-4.1":          {Name: "OpenAI GPT-4.1", Provider: ProviderOpenAI, ModelID: "gpt-4.1", PriceInPerMTok: 2.00, PriceOutPerMTok: 8.00},
	"gpt-4.1-mini":     {Name: "OpenAI GPT-4.1-mini", Provider: ProviderOpenAI, ModelID: "gpt-4.1-mini", PriceInPerMTok: 0.40, PriceOutPerMTok: 1.60},
	"gpt-4.1-nano":     {Name: "OpenAI GPT-4.1-nano", Provider: ProviderOpenAI, ModelID: "gpt-4.1-nano", PriceInPerMTok: 0.10, PriceOutPerMTok: 0.40},
	"gemini-2.5-pro":   {Name: "Gemini 2.5 Pro", Provider: ProviderGemini, ModelID: "gemini-2.5-pro", PriceInPerMTok: 1.25, PriceOutPerMTok: 10.00},
	"gemini-2.5-flash": {Name: "Gemini 2.5 Flash", Provider: ProviderGemini, ModelID: "gemini-2.5-flash", PriceInPerMTok: 0.30, PriceOutPerMTok: 2.50},
	"gpt-oss-120b":     {Name: "GPT OSS 120B", Provider: ProviderGroq, ModelID: "openai/gpt-oss-120b", PriceInPerMTok: 0.15, PriceOutPerMTok: 0.75},
	"gpt-oss-20b":      {Name: "GPT OSS 20B", Provider: ProviderGroq, ModelID: "openai/gpt-oss-20b", PriceInPerMTok: 0.10, PriceOutPerMTok: 0.50},
	"llama-4-maverick": {Name: "Llama 4 Maverick", Provider: ProviderGroq, ModelID: "meta-llama/llama-4-maverick-17b-128e-instruct", PriceInPerMTok: 0.20, PriceOutPerMTok: 0.60},
	"llama-4-scout":    {Name: "Llama 4 Scout", Provider: ProviderGroq, ModelID: "meta-llama/llama-4-scout-17b-16e-instruct", PriceInPerMTok: 0.11, PriceOutPerMTok: 0.34},
	"kimi-k2":          {Name: "Kimi K2", Provider: ProviderGroq, ModelID: "moonshotai/kimi-k2-instruct", PriceInPerMTok: 1.00, PriceOutPerMTok: 3.00},
}

func init() {
	// Temperature is zero for every catalog entry; stamp keys so a config
	// can be passed around without carrying its lookup key separately.
	for key, cfg := range modelCatalog {
		cfg.Key = key
		modelCatalog[key] = cfg
	}
}

// UnknownModelError reports a model key absent from the catalog. This is a
// configuration mistake, fatal to a run; it is never converted into a
// per-attempt failure row.
type UnknownModelError struct {
	Key string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model key: %q (see 'sentex models' for the catalog)", e.Key)
}

// LookupModel resolves a catalog key.
func LookupModel(key string) (ModelConfig, error) {
	cfg, ok := modelCatalog[key]
	if !ok {
		return ModelConfig{}, &UnknownModelError{Key: key}
	}
	return cfg, nil
}

// ModelKeys returns all catalog keys sorted for stable listings.
func ModelKeys() []string {
	keys := make([]string, 0, len(modelCatalog))
	for key := range modelCatalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
