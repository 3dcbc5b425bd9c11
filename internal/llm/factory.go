package llm

import (
	"context"
	"fmt"

	"github.com/learnpath/learnpath/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with event
// logging when repo is non-nil. A missing API key yields an error wrapping
// ErrAuthMissing.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderZhipu:
		base, err = NewZhipuProvider(cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, repo), nil
}
