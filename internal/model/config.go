package model

import "time"

// Config is the full application configuration, loaded from
// ~/.sentex/config.yaml with SENTEX_* environment overrides.
type Config struct {
	Providers   ProvidersConfig   `yaml:"providers"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
}

// ProviderConfig holds per-vendor connection settings. API keys normally come
// from the environment (OPENAI_API_KEY, GEMINI_API_KEY, GROQ_API_KEY).
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout int    `yaml:"timeout"` // seconds per request

	// Rate limiting, enforced independently per vendor.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ProvidersConfig groups the three vendor families.
type ProvidersConfig struct {
	OpenAI ProviderConfig `yaml:"openai"`
	Gemini ProviderConfig `yaml:"gemini"`
	Groq   ProviderConfig `yaml:"groq"`
}

// For returns the section for a provider.
func (p ProvidersConfig) For(provider Provider) ProviderConfig {
	switch provider {
	case ProviderGemini:
		return p.Gemini
	case ProviderGroq:
		return p.Groq
	default:
		return p.OpenAI
	}
}

// ConcurrencyConfig bounds the worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig controls the attempt-result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// OutputConfig controls batch output defaults.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults. Per-provider rates are deliberately
// conservative; vendors throttle aggressively and a throttled attempt is
// indistinguishable from a genuine failure in the result table.
func DefaultConfig() *Config {
	provider := ProviderConfig{
		Timeout:           120,
		RequestsPerSecond: 1.0,
		Burst:             2,
	}
	return &Config{
		Providers: ProvidersConfig{
			OpenAI: provider,
			Gemini: provider,
			Groq:   provider,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // resolved to ~/.sentex/cache when empty
			TTL:     7 * 24 * time.Hour,
		},
		Output: OutputConfig{Dir: "./sentex-out"},
	}
}
