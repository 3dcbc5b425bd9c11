package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/scoring"
)

// normalizer coerces a parsed payload toward the feature's shape and fills
// optional fields. It may modify v in place.
type normalizer func(v any, req feature.Request) (any, error)

var normalizers = map[feature.Feature]normalizer{
	feature.LearningStyle:         normalizeLearningStyle,
	feature.ContentRecommendation: normalizeRecommendations,
	feature.WeaknessAnalysis:      normalizeWeakness,
	feature.MistakeAnalysis:       normalizeMistakes,
	feature.AdaptiveTest:          normalizeAdaptiveTest,
	feature.LearningAnalysis:      normalizeLearningAnalysis,
}

// Recommendation defaults for fields a model leaves out.
const (
	defaultContentType = "interactive"
	defaultMatchScore  = 0.8
	defaultExplanation = "此内容适合您的学习风格"
	defaultApproach    = "建议仔细学习并做笔记"
	firstContentID     = 100
)

func standardRules() map[string]any {
	rules := make(map[string]any)
	for k, v := range feature.StandardAdjustmentRules() {
		rules[k] = v
	}
	return rules
}

// stepRules are the numeric difficulty steps used when the model returned
// only a question list.
func stepRules() map[string]any {
	return map[string]any{"correct_answer": "+0.1", "incorrect_answer": "-0.05"}
}

var styleAliases = map[string]string{
	"visual":      feature.StyleVisual,
	"视觉":          feature.StyleVisual,
	"auditory":    feature.StyleAuditory,
	"听觉":          feature.StyleAuditory,
	"kinesthetic": feature.StyleKinesthetic,
	"动觉":          feature.StyleKinesthetic,
	"reading":     feature.StyleReading,
	"阅读":          feature.StyleReading,
	"read/write":  feature.StyleReading,
}

var questionTypes = map[string]string{
	"choice":          feature.QuestionChoice,
	"multiple_choice": feature.QuestionChoice,
	"single_choice":   feature.QuestionChoice,
	"text":            feature.QuestionText,
	"short_answer":    feature.QuestionText,
	"essay":           feature.QuestionText,
	"open":            feature.QuestionText,
}

func normalizeLearningStyle(v any, req feature.Request) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an object", nil)
	}

	scores := make(map[string]float64, len(scoring.Styles))
	for _, s := range scoring.Styles {
		key := s + "_score"
		m[key] = toNumber(m[key])
		if f, ok := m[key].(float64); ok {
			scores[s] = f
		}
	}

	dominant := styleName(m["dominant_style"])
	if dominant != "" {
		m["dominant_style"] = dominant
	}

	if sec := styleName(m["secondary_style"]); sec != "" {
		m["secondary_style"] = sec
	} else if dominant != "" && len(scores) == len(scoring.Styles) {
		m["secondary_style"] = scoring.Secondary(scores, dominant)
	}
	return m, nil
}

func normalizeRecommendations(v any, req feature.Request) (any, error) {
	if m, ok := v.(map[string]any); ok {
		for _, key := range []string{"recommendations", "items"} {
			if arr, ok := m[key].([]any); ok {
				v = arr
				break
			}
		}
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an array of recommendations", nil)
	}

	limit := req.EffectiveLimit()
	out := make([]any, 0, min(limit, len(arr)))
	for _, item := range arr {
		if len(out) == limit {
			break
		}
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		// Models sometimes flatten the content fields into the item.
		content, ok := rec["content"].(map[string]any)
		if !ok {
			content = rec
		}
		title := text(content["title"])
		if title == "" {
			continue
		}

		n := len(out)
		id, ok := integer(content["id"])
		if !ok {
			id, ok = integer(rec["content_id"])
		}
		if !ok {
			id = float64(firstContentID + n)
		}

		contentType := text(content["type"])
		if contentType == "" {
			contentType = text(content["content_type"])
		}
		if contentType == "" {
			contentType = defaultContentType
		}

		score := toFraction(content["match_score"])
		if score == nil {
			score = defaultMatchScore
		}

		out = append(out, map[string]any{
			"content": map[string]any{
				"id":          id,
				"title":       title,
				"type":        contentType,
				"match_score": score,
			},
			"explanation":         textOr(rec["explanation"], defaultExplanation),
			"approach_suggestion": textOr(rec["approach_suggestion"], defaultApproach),
		})
	}
	return out, nil
}

func normalizeWeakness(v any, req feature.Request) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an object", nil)
	}

	weak := toList(m["weak_areas"])
	for _, item := range listItems(weak) {
		area, ok := item.(map[string]any)
		if !ok {
			continue
		}
		area["confidence_level"] = toFraction(area["confidence_level"])
		area["suggested_resources"] = toList(area["suggested_resources"])
	}
	m["weak_areas"] = weak

	strong := toList(m["strength_areas"])
	for _, item := range listItems(strong) {
		if area, ok := item.(map[string]any); ok {
			area["confidence_level"] = toFraction(area["confidence_level"])
		}
	}
	m["strength_areas"] = strong

	if plan, ok := m["improvement_plan"].(map[string]any); ok {
		plan["short_term_goals"] = toStringList(plan["short_term_goals"])
		plan["long_term_goals"] = toStringList(plan["long_term_goals"])
		plan["recommended_study_path"] = joinPath(plan["recommended_study_path"])
	}
	return m, nil
}

func normalizeMistakes(v any, req feature.Request) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an object", nil)
	}

	mistakes := toList(m["common_mistakes"])
	for _, item := range listItems(mistakes) {
		cm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s := text(cm["frequency"]); s != "" {
			cm["frequency"] = s
		}
		cm["examples"] = toStringList(cm["examples"])
	}
	m["common_mistakes"] = mistakes
	m["mistake_patterns"] = toStringMap(m["mistake_patterns"])

	if plan, ok := m["remediation_plan"].(map[string]any); ok {
		for _, key := range []string{"focus_areas", "suggested_exercises", "learning_materials"} {
			plan[key] = toStringList(plan[key])
		}
	}
	return m, nil
}

func normalizeAdaptiveTest(v any, req feature.Request) (any, error) {
	bare := false
	if arr, ok := v.([]any); ok {
		v = map[string]any{"questions": arr}
		bare = true
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an object with questions", nil)
	}

	difficulty := req.Difficulty()
	topic := req.Topic()

	questions := toList(m["questions"])
	for i, item := range listItems(questions) {
		q, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := integer(q["id"]); ok {
			q["id"] = id
		} else {
			q["id"] = float64(i + 1)
		}
		if qt, ok := questionTypes[token(q["question_type"])]; ok {
			q["question_type"] = qt
		}
		if raw, present := q["options"]; present {
			opts := toStringList(raw)
			if list, ok := opts.([]any); ok && len(list) == 0 {
				delete(q, "options")
			} else {
				q["options"] = opts
			}
		}
		q["difficulty"] = textOr(q["difficulty"], difficulty)
		q["topic"] = textOr(q["topic"], topic)
	}
	m["questions"] = questions

	logic, ok := m["adaptive_logic"].(map[string]any)
	if !ok {
		logic = map[string]any{}
	}
	logic["initial_difficulty"] = textOr(logic["initial_difficulty"], difficulty)
	rules := toStringMap(logic["adjustment_rules"])
	if r, ok := rules.(map[string]any); ok && len(r) == 0 {
		if bare {
			rules = stepRules()
		} else {
			rules = standardRules()
		}
	}
	logic["adjustment_rules"] = rules
	m["adaptive_logic"] = logic

	m["estimated_difficulty"] = textOr(m["estimated_difficulty"], difficulty)

	topics := toStringList(m["topics_covered"])
	if t, ok := topics.([]any); ok && len(t) == 0 {
		topics = []any{topic}
	}
	m["topics_covered"] = topics
	return m, nil
}

func normalizeLearningAnalysis(v any, req feature.Request) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fail(req.Feature, "normalize", "expected an object", nil)
	}
	m["behavior_patterns"] = toStringMap(m["behavior_patterns"])
	for _, key := range []string{"strengths", "weaknesses", "recommendations", "optimal_content_types"} {
		m[key] = toStringList(m[key])
	}
	return m, nil
}

// toNumber turns numeric strings (optionally ending in %) into float64.
// Anything else is returned unchanged.
func toNumber(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return v
	}
	return f
}

// toFraction maps a percentage in (1, 100] onto [0, 1]. Missing values stay
// nil so callers can default them.
func toFraction(v any) any {
	n := toNumber(v)
	if f, ok := n.(float64); ok && f > 1 && f <= 100 {
		return f / 100
	}
	return n
}

// integer returns v as a whole float64 when it is numeric and integral.
func integer(v any) (float64, bool) {
	f, ok := toNumber(v).(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

// toList makes nil an empty list and a lone string a one-element list.
func toList(v any) any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case string:
		if strings.TrimSpace(t) == "" {
			return []any{}
		}
		return []any{t}
	}
	return v
}

// toStringList is toList plus scalar-to-string conversion and blank removal.
// Non-scalar entries are kept so the shape check rejects them.
func toStringList(v any) any {
	arr, ok := toList(v).([]any)
	if !ok {
		return v
	}
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		switch item.(type) {
		case map[string]any, []any:
			out = append(out, item)
			continue
		}
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toStringMap makes nil an empty object and stringifies scalar values.
func toStringMap(v any) any {
	if v == nil {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, val := range m {
		switch val.(type) {
		case map[string]any, []any:
			continue
		}
		m[k] = text(val)
	}
	return m
}

// joinPath accepts a study path given as a list of steps.
func joinPath(v any) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}
	steps := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := text(item); s != "" {
			steps = append(steps, s)
		}
	}
	return strings.Join(steps, " → ")
}

func listItems(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func textOr(v any, def string) string {
	if s := text(v); s != "" {
		return s
	}
	return def
}

func token(v any) string {
	return strings.ReplaceAll(strings.ToLower(text(v)), "-", "_")
}

func styleName(v any) string {
	return styleAliases[strings.ToLower(text(v))]
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	}
	return v
}
