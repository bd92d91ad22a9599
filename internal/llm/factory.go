package llm

import (
	"fmt"
	"log/slog"

	"github.com/rbarros/sentex/internal/model"
)

// NewProvider creates the adapter for one vendor family.
func NewProvider(provider model.Provider, config Config, log *slog.Logger) (Provider, error) {
	switch provider {
	case model.ProviderOpenAI:
		return NewOpenAIProvider(config, log)

	case model.ProviderGemini:
		return NewGeminiProvider(config, log)

	case model.ProviderGroq:
		return NewGroqProvider(config, log)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, gemini, groq)", provider)
	}
}

// NewProviderSet builds adapters for exactly the vendor families the
// requested models need. A missing API key is a configuration error raised
// here, before any extraction attempt is made.
func NewProviderSet(cfg model.ProvidersConfig, needed []model.Provider, log *slog.Logger) (map[model.Provider]Provider, error) {
	set := make(map[model.Provider]Provider, len(needed))
	for _, name := range needed {
		if _, done := set[name]; done {
			continue
		}
		adapter, err := NewProvider(name, ConfigFrom(cfg.For(name)), log)
		if err != nil {
			return nil, fmt.Errorf("configure %s provider: %w", name, err)
		}
		set[name] = adapter
	}
	return set, nil
}
