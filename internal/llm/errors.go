package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the provider answered without any usable
// text, e.g. zero choices or no text block.
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Kind classifies a failed model call.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindTransport   Kind = "transport"
	KindAuthMissing Kind = "auth_missing"
)

// Sentinels for errors.Is against a *CallError.
var (
	ErrTimeout     = errors.New("model call timed out")
	ErrTransport   = errors.New("model call failed")
	ErrAuthMissing = errors.New("model API key not configured")
)

// CallError is returned by Invoker.Invoke for every failed call.
type CallError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("llm %s", e.Kind)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Detail)
}

func (e *CallError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *CallError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrAuthMissing:
		return e.Kind == KindAuthMissing
	}
	return false
}

// KindOf returns the kind of a *CallError anywhere in err's chain, or "".
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
