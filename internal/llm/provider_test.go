package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "```json\n{\"b\":2}\n```"},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("", "first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("", "second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "```json\n{\"b\":2}\n```" {
		t.Fatalf("unexpected text %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{}`})

	_, _ = mock.Generate(context.Background(), UserPrompt("sys", "hello"))

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if mock.Calls[0].Messages[0].Content != "hello" {
		t.Fatalf("expected user message 'hello', got %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{RetryAfter: 5 * time.Second}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_DelayHonoursContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "{}", Delay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "adaptive-test")
	if p := PurposeFrom(ctx); p != "adaptive-test" {
		t.Fatalf("expected 'adaptive-test', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "zhipu without key is still valid",
			cfg:     Config{Provider: ProviderZhipu, Timeout: time.Second},
			wantErr: false,
		},
		{
			name:    "mock",
			cfg:     Config{Provider: ProviderMock, Timeout: time.Second},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown", Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			cfg:     Config{Provider: ProviderOpenAI},
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			cfg:     Config{Provider: ProviderOpenAI, Timeout: time.Second, Temperature: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("MODEL_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("MODEL_TIMEOUT_SECONDS", "12")
	t.Setenv("MODEL_MAX_TOKENS", "not-a-number")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.APIKey != "sk-test" || cfg.Model != "gpt-4o" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != 12*time.Second {
		t.Fatalf("expected 12s timeout, got %s", cfg.Timeout)
	}

	t.Setenv("MODEL_TIMEOUT_SECONDS", "0.5")
	if got := ConfigFromEnv().Timeout; got != 500*time.Millisecond {
		t.Fatalf("expected 500ms timeout, got %s", got)
	}
	if cfg.MaxTokens != DefaultConfig().MaxTokens {
		t.Fatalf("expected default max tokens, got %d", cfg.MaxTokens)
	}
}

func TestConfig_ModelName(t *testing.T) {
	if got := (Config{Provider: ProviderZhipu}).ModelName(); got != "glm-4-plus" {
		t.Fatalf("expected glm-4-plus, got %q", got)
	}
	if got := (Config{Provider: ProviderZhipu, Model: "glm-4"}).ModelName(); got != "glm-4" {
		t.Fatalf("expected glm-4, got %q", got)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("claude-haiku")
	if c == nil || c.InputPerMTok != 1 {
		t.Fatalf("expected alias to resolve to haiku pricing, got %+v", c)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
	if got := (ModelCost{InputPerMTok: 2, OutputPerMTok: 8}).Cost(500_000, 250_000); got != 3 {
		t.Fatalf("expected $3, got %v", got)
	}
}
