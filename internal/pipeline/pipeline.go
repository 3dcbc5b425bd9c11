// Package pipeline runs one feature request through the model path and falls
// back to the deterministic templates when any step of that path fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/learnpath/learnpath/internal/extract"
	"github.com/learnpath/learnpath/internal/fallback"
	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/llm"
	"github.com/learnpath/learnpath/internal/logging"
	"github.com/learnpath/learnpath/internal/metrics"
	"github.com/learnpath/learnpath/internal/prompt"
	"github.com/learnpath/learnpath/internal/schema"
	"github.com/learnpath/learnpath/internal/store"
)

// Failure names why the model path was abandoned.
type Failure string

const (
	FailureNone       Failure = ""
	FailureTimeout    Failure = "timeout"
	FailureTransport  Failure = "transport"
	FailureAuth       Failure = "auth_missing"
	FailureExtraction Failure = "extraction_failed"
	FailureValidation Failure = "validation_failed"
)

// Outcome is a result together with its provenance.
type Outcome struct {
	RequestID string
	Feature   feature.Feature
	Result    feature.Result
	Source    feature.Source

	// Failure is set when Source is fallback because the model path failed.
	// It stays empty when fallback-only mode skipped the model.
	Failure Failure

	// Strategy is the extraction strategy that found the model's JSON.
	Strategy extract.Strategy

	Model string

	// Latency is the wall time of the model call; zero when no call was made.
	Latency time.Duration

	// Err is the model path error that caused the fallback, if any.
	Err error
}

// Invoker makes one bounded model call.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.CallResult, error)
}

// Options configures a Service.
type Options struct {
	Invoker   Invoker
	Builder   *prompt.Builder
	Validator *schema.Validator

	// FallbackOnly skips the model and always answers from the templates.
	FallbackOnly bool

	// Runs records every outcome when non-nil.
	Runs store.RunRepo

	// Metrics observes every outcome when non-nil.
	Metrics *metrics.Metrics
}

// Service is the single entry point every feature goes through. It is safe
// for concurrent use.
type Service struct {
	invoker      Invoker
	builder      *prompt.Builder
	validator    *schema.Validator
	fallbackOnly bool
	runs         store.RunRepo
	metrics      *metrics.Metrics
}

// New creates a Service. A nil Invoker forces fallback-only mode.
func New(opts Options) *Service {
	s := &Service{
		invoker:      opts.Invoker,
		builder:      opts.Builder,
		validator:    opts.Validator,
		fallbackOnly: opts.FallbackOnly || opts.Invoker == nil,
		runs:         opts.Runs,
		metrics:      opts.Metrics,
	}
	if s.builder == nil {
		s.builder = prompt.NewBuilder("")
	}
	if s.validator == nil {
		s.validator = schema.New()
	}
	return s
}

// Run answers req. It never returns an error: every model path failure is
// recovered by the fallback generator. req.Feature must be a known feature.
func (s *Service) Run(ctx context.Context, req feature.Request) Outcome {
	id := logging.RequestID(ctx)
	if id == "" {
		id = logging.NewRequestID()
		ctx = logging.WithRequestID(ctx, id)
	}
	ctx = llm.WithPurpose(ctx, req.Feature.Purpose())

	out := Outcome{RequestID: id, Feature: req.Feature}
	if !s.fallbackOnly {
		s.tryModel(ctx, req, &out)
	}
	if out.Result == nil {
		out.Result = s.fallback(req)
		out.Source = feature.SourceFallback
	}

	s.report(ctx, out)
	return out
}

func (s *Service) tryModel(ctx context.Context, req feature.Request, out *Outcome) {
	llmReq, err := s.builder.Build(req)
	if err != nil {
		out.Failure, out.Err = FailureTransport, fmt.Errorf("build prompt: %w", err)
		return
	}
	out.Model = llmReq.Model

	start := time.Now()
	call, err := s.invoker.Invoke(ctx, llmReq)
	out.Latency = time.Since(start)
	if err != nil {
		out.Failure, out.Err = classify(err), err
		return
	}
	out.Model = call.Model
	out.Latency = call.Latency

	payload, ok := extract.Extract(call.Text)
	if !ok {
		out.Failure, out.Err = FailureExtraction, errors.New("no JSON object or array in model reply")
		return
	}
	out.Strategy = payload.Strategy

	res, err := s.validator.Validate(payload, req)
	if err != nil {
		out.Failure, out.Err = FailureValidation, err
		return
	}
	out.Result = res
	out.Source = feature.SourceModel
}

func classify(err error) Failure {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return FailureTimeout
	case errors.Is(err, llm.ErrAuthMissing):
		return FailureAuth
	default:
		return FailureTransport
	}
}

// fallback generates the template result and checks it against the same
// validator the model path uses. An invalid template is a bug.
func (s *Service) fallback(req feature.Request) feature.Result {
	res := fallback.Generate(req)
	if _, err := s.validator.Revalidate(res, req); err != nil {
		panic(fmt.Sprintf("pipeline: fallback produced an invalid %s result: %v", req.Feature, err))
	}
	return res
}

func (s *Service) report(ctx context.Context, out Outcome) {
	log := logging.Ctx(ctx)
	var ev *zerolog.Event
	if out.Failure != FailureNone {
		ev = log.Warn().Err(out.Err).Str("failure", string(out.Failure))
	} else {
		ev = log.Info()
	}
	ev.Str("feature", string(out.Feature)).
		Str("source", string(out.Source)).
		Str("strategy", string(out.Strategy)).
		Str("model", out.Model).
		Dur("latency", out.Latency).
		Bool("fallback_only", s.fallbackOnly).
		Msg("pipeline outcome")

	s.metrics.Observe(metrics.Run{
		Feature:  string(out.Feature),
		Source:   string(out.Source),
		Failure:  string(out.Failure),
		Strategy: string(out.Strategy),
		Latency:  out.Latency,
	})

	if s.runs == nil {
		return
	}
	body, err := json.Marshal(out.Result)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode result for run log")
	}
	data := store.PipelineRunData{
		RequestID:  out.RequestID,
		Feature:    string(out.Feature),
		Source:     string(out.Source),
		Failure:    string(out.Failure),
		Strategy:   string(out.Strategy),
		Model:      out.Model,
		LatencyMs:  out.Latency.Milliseconds(),
		ResultJSON: string(body),
	}
	if err := s.runs.AppendRun(context.WithoutCancel(ctx), data); err != nil {
		log.Warn().Err(err).Msg("failed to record pipeline run")
	}
}
