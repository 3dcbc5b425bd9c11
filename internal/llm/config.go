package llm

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Supported provider names.
const (
	ProviderZhipu      = "zhipu"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

// defaultModels is the model used when Config.Model is empty.
var defaultModels = map[string]string{
	ProviderZhipu:      "glm-4-plus",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
	ProviderAnthropic:  "claude-haiku",
	ProviderGemini:     "gemini-flash",
	ProviderMock:       "mock",
}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "zhipu", "openai", "openrouter", "anthropic", "gemini", "mock"
	Provider string

	// APIKey authenticates against the selected provider. An empty key is
	// not a configuration error: calls fail fast with KindAuthMissing.
	APIKey string

	// Model overrides the provider's default model.
	Model string

	// BaseURL overrides the endpoint for OpenAI-compatible providers.
	BaseURL string

	MaxTokens   int
	Temperature float64

	// Timeout is the deadline for a single model call. Default: 30s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderZhipu,
		MaxTokens:   2048,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
	}
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("MODEL_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	cfg.APIKey = os.Getenv("MODEL_API_KEY")
	cfg.Model = os.Getenv("MODEL_NAME")
	cfg.BaseURL = os.Getenv("MODEL_BASE_URL")

	if v, err := strconv.ParseFloat(os.Getenv("MODEL_TIMEOUT_SECONDS"), 64); err == nil && v > 0 && !math.IsInf(v, 0) {
		cfg.Timeout = time.Duration(v * float64(time.Second))
	}
	if v, err := strconv.Atoi(os.Getenv("MODEL_MAX_TOKENS")); err == nil && v > 0 {
		cfg.MaxTokens = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("MODEL_TEMPERATURE"), 64); err == nil {
		cfg.Temperature = v
	}

	return cfg
}

// Validate checks that the provider is known and the limits are sane.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("model timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within 0..2, got %v", c.Temperature)
	}
	return nil
}

// NeedsKey reports whether the provider requires an API key.
func (c Config) NeedsKey() bool {
	return c.Provider != ProviderMock
}
