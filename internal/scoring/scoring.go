// Package scoring turns Likert-scale assessment answers into a learning-style
// vector. Everything here is pure: no I/O, no shared state.
package scoring

import (
	"fmt"

	"github.com/learnpath/learnpath/internal/feature"
)

// Styles lists the four learning styles in tie-break precedence order.
// When two styles score equally, the one that appears first wins.
var Styles = []string{
	feature.StyleVisual,
	feature.StyleAuditory,
	feature.StyleKinesthetic,
	feature.StyleReading,
}

// Likert bounds for a single answer.
const (
	MinValue = 1
	MaxValue = 5
)

// Response is one answered assessment question.
type Response struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// Vector is the scored learning-style profile for one submission.
type Vector struct {
	Visual      float64
	Auditory    float64
	Kinesthetic float64
	Reading     float64
	Dominant    string
	Secondary   *string
}

// Get returns the score for a style name, or 0 for an unknown name.
func (v Vector) Get(style string) float64 {
	switch style {
	case feature.StyleVisual:
		return v.Visual
	case feature.StyleAuditory:
		return v.Auditory
	case feature.StyleKinesthetic:
		return v.Kinesthetic
	case feature.StyleReading:
		return v.Reading
	}
	return 0
}

// Result converts the vector into the LearningStyle feature result.
func (v Vector) Result() *feature.LearningStyleResult {
	r := &feature.LearningStyleResult{
		VisualScore:      v.Visual,
		AuditoryScore:    v.Auditory,
		KinestheticScore: v.Kinesthetic,
		ReadingScore:     v.Reading,
		DominantStyle:    v.Dominant,
	}
	if v.Secondary != nil {
		s := *v.Secondary
		r.SecondaryStyle = &s
	}
	return r
}

// Score computes the per-category mean of the answers scaled to 0..100.
// Categories without answers score 0; unknown categories are ignored.
func Score(responses []Response) Vector {
	sums := make(map[string]int, len(Styles))
	counts := make(map[string]int, len(Styles))
	for _, r := range responses {
		if !isStyle(r.Category) {
			continue
		}
		sums[r.Category] += r.Value
		counts[r.Category]++
	}

	scores := make(map[string]float64, len(Styles))
	for _, s := range Styles {
		if counts[s] > 0 {
			scores[s] = float64(sums[s]) / float64(counts[s]) * 20
		}
	}

	v := Vector{
		Visual:      scores[feature.StyleVisual],
		Auditory:    scores[feature.StyleAuditory],
		Kinesthetic: scores[feature.StyleKinesthetic],
		Reading:     scores[feature.StyleReading],
	}
	v.Dominant, v.Secondary = Rank(scores)
	return v
}

// Rank picks the dominant style and the best of the remaining three using
// the fixed precedence order. The secondary style is always named.
func Rank(scores map[string]float64) (dominant string, secondary *string) {
	dominant = argMax(scores, "")
	sec := argMax(scores, dominant)
	return dominant, &sec
}

// Secondary returns the best style other than dominant.
func Secondary(scores map[string]float64, dominant string) string {
	return argMax(scores, dominant)
}

func argMax(scores map[string]float64, skip string) string {
	best := ""
	for _, s := range Styles {
		if s == skip {
			continue
		}
		if best == "" || scores[s] > scores[best] {
			best = s
		}
	}
	return best
}

func isStyle(s string) bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// ParseResponses converts loosely typed answers (as decoded from JSON) into
// Responses. Each entry needs a "category" and a numeric "value" (or
// "answer", or "response_value.answer"). Values outside 1..5 are rejected.
func ParseResponses(raw []map[string]any) ([]Response, error) {
	out := make([]Response, 0, len(raw))
	for i, m := range raw {
		cat, _ := m["category"].(string)
		if !isStyle(cat) {
			return nil, fmt.Errorf("response %d: unknown category %q", i, cat)
		}
		val, ok := answerValue(m)
		if !ok {
			return nil, fmt.Errorf("response %d: missing numeric value", i)
		}
		if val != float64(int(val)) || val < MinValue || val > MaxValue {
			return nil, fmt.Errorf("response %d: value %v outside %d..%d", i, val, MinValue, MaxValue)
		}
		out = append(out, Response{Category: cat, Value: int(val)})
	}
	return out, nil
}

func answerValue(m map[string]any) (float64, bool) {
	p := feature.Payload(m)
	for _, key := range []string{"value", "answer"} {
		if f, ok := p.Number(key); ok {
			return f, true
		}
	}
	if nested, ok := m["response_value"].(map[string]any); ok {
		return feature.Payload(nested).Number("answer")
	}
	return 0, false
}
