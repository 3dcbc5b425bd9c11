package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnpath/learnpath/internal/store"
)

// CallResult is a successful model call.
type CallResult struct {
	Text    string
	Latency time.Duration
	Model   string
	Usage   Usage
}

// Invoker makes exactly one bounded call per request. It never retries:
// any failure is reported as a *CallError and the caller decides what to do.
type Invoker struct {
	provider    Provider
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// NewInvoker wraps an already constructed provider. A nil provider makes
// every call fail with KindAuthMissing.
func NewInvoker(p Provider, cfg Config) *Invoker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Invoker{
		provider:    p,
		timeout:     timeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// NewInvokerFromConfig builds the provider named by cfg. A missing API key
// is not an error here; it surfaces as KindAuthMissing on each call so that
// callers can still fall back.
func NewInvokerFromConfig(ctx context.Context, cfg Config, repo store.EventRepo) (*Invoker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.NeedsKey() && cfg.APIKey == "" {
		return NewInvoker(nil, cfg), nil
	}
	p, err := NewProvider(ctx, cfg, repo)
	if err != nil {
		return nil, err
	}
	return NewInvoker(p, cfg), nil
}

// Ready reports whether a provider is configured.
func (inv *Invoker) Ready() bool { return inv.provider != nil }

// Invoke sends req and waits for the reply or the deadline, whichever comes
// first. A reply that arrives after the deadline is discarded.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*CallResult, error) {
	if inv.provider == nil {
		return nil, &CallError{Kind: KindAuthMissing, Detail: "no API key configured", Err: ErrAuthMissing}
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = inv.maxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = inv.temperature
	}

	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	type reply struct {
		resp *Response
		err  error
	}
	// Buffered so a late reply never blocks the sender goroutine.
	done := make(chan reply, 1)

	start := time.Now()
	go func() {
		resp, err := inv.provider.Generate(callCtx, req)
		done <- reply{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		latency := time.Since(start)
		if r.err != nil {
			return nil, classify(callCtx, r.err, inv.timeout)
		}
		if r.resp == nil {
			return nil, &CallError{Kind: KindTransport, Detail: "provider returned no response"}
		}
		model := r.resp.Model
		if model == "" {
			model = modelFor(req, inv.provider.ModelID(), nil)
		}
		return &CallResult{
			Text:    r.resp.Text,
			Latency: latency,
			Model:   model,
			Usage:   r.resp.Usage,
		}, nil

	case <-callCtx.Done():
		return nil, classify(callCtx, callCtx.Err(), inv.timeout)
	}
}

func classify(callCtx context.Context, err error, timeout time.Duration) *CallError {
	switch {
	case errors.Is(err, ErrAuthMissing):
		return &CallError{Kind: KindAuthMissing, Detail: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return &CallError{Kind: KindTimeout, Detail: fmt.Sprintf("no reply within %s", timeout), Err: err}
	default:
		return &CallError{Kind: KindTransport, Detail: err.Error(), Err: err}
	}
}
