package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/learnpath/learnpath/internal/logging"
	"github.com/learnpath/learnpath/internal/store"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels calls made with ctx, e.g. "adaptive-test", so the
// event log can group them.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner        Provider
	providerName string
	eventRepo    store.EventRepo
}

// WithLogging wraps a Provider with event logging. A nil repo disables
// recording and returns p unchanged.
func WithLogging(p Provider, providerName string, repo store.EventRepo) Provider {
	if repo == nil {
		return p
	}
	return &LoggingProvider{inner: p, providerName: providerName, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		RequestID:   logging.RequestID(ctx),
		Provider:    l.providerName,
		Model:       modelFor(req, l.inner.ModelID(), nil),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// The call context may already be past its deadline; recording must
	// not depend on it.
	logCtx := context.WithoutCancel(ctx)
	if logErr := l.eventRepo.AppendLLMRequest(logCtx, data); logErr != nil {
		logging.Ctx(ctx).Warn().Err(logErr).Str("purpose", data.Purpose).Msg("failed to record LLM request event")
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.JSONMode {
		b.WriteString("[json mode]\n")
	}

	return b.String()
}
