package feature

import (
	"fmt"
	"strings"
)

// Feature identifies one AI-assisted capability.
type Feature string

const (
	LearningStyle         Feature = "learning_style"
	ContentRecommendation Feature = "content_recommendation"
	WeaknessAnalysis      Feature = "weakness_analysis"
	MistakeAnalysis       Feature = "mistake_analysis"
	AdaptiveTest          Feature = "adaptive_test"
	LearningAnalysis      Feature = "learning_analysis"
)

// All lists every feature in a stable order.
var All = []Feature{
	LearningStyle,
	ContentRecommendation,
	WeaknessAnalysis,
	MistakeAnalysis,
	AdaptiveTest,
	LearningAnalysis,
}

// Parse resolves a feature name. Hyphens and case are ignored, so
// "adaptive-test" and "Adaptive_Test" both resolve to AdaptiveTest.
func Parse(s string) (Feature, error) {
	norm := Feature(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, f := range All {
		if f == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature: %q", s)
}

// Valid reports whether f is a known feature.
func (f Feature) Valid() bool {
	for _, known := range All {
		if f == known {
			return true
		}
	}
	return false
}

// Purpose returns the label used for LLM event logging, e.g. "adaptive-test".
func (f Feature) Purpose() string {
	return strings.ReplaceAll(string(f), "_", "-")
}

// DefaultLimit is the number of recommendations returned when the caller
// does not ask for a specific count.
const DefaultLimit = 3

// DefaultDifficulty is used wherever a request does not name a difficulty.
const DefaultDifficulty = "auto"

// Request is one call into the AI pipeline. It is never mutated after
// construction.
type Request struct {
	Feature Feature
	Payload Payload

	// Limit caps list-shaped results (recommendations). Zero means
	// DefaultLimit.
	Limit int
}

// NewRequest builds a Request, copying payload so later changes by the
// caller do not leak into an in-flight call.
func NewRequest(f Feature, payload map[string]any, limit int) Request {
	cp := make(Payload, len(payload))
	for k, v := range payload {
		cp[k] = v
	}
	return Request{Feature: f, Payload: cp, Limit: limit}
}

// EffectiveLimit returns Limit, or DefaultLimit when unset.
func (r Request) EffectiveLimit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	if n := r.Payload.Int("limit", 0); n > 0 {
		return n
	}
	return DefaultLimit
}

// Topic returns the request topic, falling back to the subject and finally
// to a generic label.
func (r Request) Topic() string {
	if t := r.Payload.String("topic", ""); t != "" {
		return t
	}
	if s := r.Payload.String("subject", ""); s != "" {
		return s
	}
	return "编程基础"
}

// Subject returns the request subject.
func (r Request) Subject() string {
	return r.Payload.String("subject", "计算机科学")
}

// Difficulty returns the requested difficulty or DefaultDifficulty.
func (r Request) Difficulty() string {
	return r.Payload.String("difficulty", DefaultDifficulty)
}
