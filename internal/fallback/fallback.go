// Package fallback produces deterministic substitute results when the model
// path fails. Every generator is pure: the same request always yields the
// same result, and every result passes schema validation for its feature.
package fallback

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/scoring"
)

// Template names a topic family with its own template content.
type Template string

const (
	Python   Template = "python"
	Database Template = "database"
	Data     Template = "data"
	Web      Template = "web"
	AI       Template = "ai"
	Generic  Template = "generic"
)

// route is checked in order; database comes before data because most
// database topics also contain "数据".
var route = []struct {
	template Template
	keywords []string
}{
	{Python, []string{"python", "编程"}},
	{Database, []string{"database", "数据库", "sql"}},
	{Data, []string{"data", "数据"}},
	{Web, []string{"web", "前端", "html"}},
	{AI, []string{"人工智能", "机器学习"}},
}

// Route picks the template family for a topic. Keywords match as
// case-insensitive substrings, except "ai" which must be a whole token.
func Route(topic string) Template {
	lower := strings.ToLower(topic)
	for _, r := range route {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.template
			}
		}
		if r.template == AI && hasToken(lower, "ai") {
			return AI
		}
	}
	return Generic
}

func hasToken(s, tok string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	return slices.Contains(fields, tok)
}

// Generate returns the fallback result for req. It never fails.
func Generate(req feature.Request) feature.Result {
	switch req.Feature {
	case feature.LearningStyle:
		return LearningStyle(req)
	case feature.ContentRecommendation:
		return ContentRecommendation(req)
	case feature.WeaknessAnalysis:
		return WeaknessAnalysis(req)
	case feature.MistakeAnalysis:
		return MistakeAnalysis(req)
	case feature.AdaptiveTest:
		return AdaptiveTest(req)
	case feature.LearningAnalysis:
		return LearningAnalysis(req)
	}
	panic(fmt.Sprintf("fallback: unknown feature %q", req.Feature))
}

func profileFor(req feature.Request) profile {
	return profiles[Route(req.Topic())]
}

// staticProfile is reported when no assessment answers are available.
var staticProfile = map[string]float64{
	feature.StyleVisual:      75,
	feature.StyleAuditory:    60,
	feature.StyleKinesthetic: 45,
	feature.StyleReading:     65,
}

// LearningStyle scores the payload's "responses" when they parse, and
// otherwise reports a fixed profile.
func LearningStyle(req feature.Request) *feature.LearningStyleResult {
	if raw := req.Payload.Maps("responses"); len(raw) > 0 {
		if responses, err := scoring.ParseResponses(raw); err == nil {
			return scoring.Score(responses).Result()
		}
	}

	dominant, secondary := scoring.Rank(staticProfile)
	return &feature.LearningStyleResult{
		VisualScore:      staticProfile[feature.StyleVisual],
		AuditoryScore:    staticProfile[feature.StyleAuditory],
		KinestheticScore: staticProfile[feature.StyleKinesthetic],
		ReadingScore:     staticProfile[feature.StyleReading],
		DominantStyle:    dominant,
		SecondaryStyle:   secondary,
	}
}

// AdaptiveTest builds a test from the topic template, padded to at least
// three questions and always containing a free-text question.
func AdaptiveTest(req feature.Request) *feature.AdaptiveTestResult {
	topic := req.Topic()
	difficulty := req.Difficulty()

	questions := slices.Clone(profileFor(req).questions)
	if len(questions) == 0 {
		questions = []feature.Question{
			choice(fmt.Sprintf("关于%s，以下说法正确的是？", topic),
				[]string{"选项A - 正确描述", "选项B - 错误描述", "选项C - 不相关描述", "选项D - 部分正确描述"},
				difficulty, topic),
			essay(fmt.Sprintf("请简述%s的主要应用场景。", topic), difficulty, topic),
		}
	}
	for i := range questions {
		questions[i].ID = i + 1
		questions[i].Options = slices.Clone(questions[i].Options)
	}

	for len(questions) < 3 {
		n := len(questions) + 1
		q := choice(fmt.Sprintf("%s的问题%d", topic, n), []string{"选项A", "选项B", "选项C", "选项D"}, difficulty, topic)
		q.ID = n
		questions = append(questions, q)
	}

	hasText := slices.ContainsFunc(questions, func(q feature.Question) bool {
		return q.QuestionType == feature.QuestionText
	})
	if !hasText {
		q := essay(fmt.Sprintf("请简要描述您对%s的理解。", topic), difficulty, topic)
		q.ID = len(questions) + 1
		questions = append(questions, q)
	}

	return &feature.AdaptiveTestResult{
		Questions: questions,
		AdaptiveLogic: feature.AdaptiveLogic{
			InitialDifficulty: difficulty,
			AdjustmentRules:   feature.StandardAdjustmentRules(),
		},
		EstimatedDifficulty: difficulty,
		TopicsCovered:       []string{topic, topic + "基础", topic + "应用"},
	}
}

// WeaknessAnalysis returns the topic template's weak and strong areas.
func WeaknessAnalysis(req feature.Request) *feature.WeaknessAnalysisResult {
	p := profileFor(req)

	weak := make([]feature.WeakArea, len(p.weakAreas))
	for i, w := range p.weakAreas {
		w.SuggestedResources = slices.Clone(w.SuggestedResources)
		weak[i] = w
	}

	return &feature.WeaknessAnalysisResult{
		WeakAreas:     weak,
		StrengthAreas: slices.Clone(p.strengthAreas),
		ImprovementPlan: feature.ImprovementPlan{
			ShortTermGoals:       slices.Clone(p.shortTermGoals),
			LongTermGoals:        slices.Clone(p.longTermGoals),
			RecommendedStudyPath: p.studyPath,
		},
	}
}

// MistakeAnalysis returns the topic template's common mistakes.
func MistakeAnalysis(req feature.Request) *feature.MistakeAnalysisResult {
	p := profileFor(req)

	mistakes := make([]feature.CommonMistake, len(p.mistakes))
	focus := make([]string, len(p.mistakes))
	for i, m := range p.mistakes {
		m.Examples = slices.Clone(m.Examples)
		mistakes[i] = m
		focus[i] = m.Topic
	}

	patterns := make(map[string]string, len(mistakePatterns))
	for k, v := range mistakePatterns {
		patterns[k] = v
	}

	return &feature.MistakeAnalysisResult{
		CommonMistakes:  mistakes,
		MistakePatterns: patterns,
		RemediationPlan: feature.RemediationPlan{
			FocusAreas:         focus,
			SuggestedExercises: slices.Clone(p.exercises),
			LearningMaterials:  slices.Clone(p.materials),
		},
	}
}

// LearningAnalysis returns a fixed analysis adjusted by the completion rate
// and content types found in the payload.
func LearningAnalysis(req feature.Request) *feature.LearningAnalysisResult {
	res := &feature.LearningAnalysisResult{
		BehaviorPatterns: map[string]string{
			"study_consistency": "不规律",
			"focus_level":       "中等",
		},
		Strengths:           []string{"专注于完成任务", "善于互动学习"},
		Weaknesses:          []string{"学习时间不足", "缺乏规律性"},
		Recommendations:     []string{"建立固定学习时间", "增加每次学习的时长"},
		OptimalContentTypes: []string{"视频教程", "互动练习"},
	}

	if rate, ok := req.Payload.Number("completion_rate"); ok {
		switch {
		case rate >= 80:
			res.Strengths = append(res.Strengths, "内容完成率高")
		case rate < 50:
			res.Weaknesses = append(res.Weaknesses, "内容完成率偏低")
			res.Recommendations = append(res.Recommendations, "将学习内容拆分为更小的单元，逐个完成")
		}
	}
	if types := req.Payload.Strings("content_types"); len(types) > 0 {
		res.OptimalContentTypes = types
	}
	return res
}

// ContentRecommendation ranks the payload's catalog by the learner's
// dominant-style affinity. Without a usable catalog it returns the topic
// template list. The result never exceeds the request limit.
func ContentRecommendation(req feature.Request) feature.Recommendations {
	limit := req.EffectiveLimit()
	if recs := rankCatalog(req.Payload.Maps("catalog"), dominantStyle(req), limit); len(recs) > 0 {
		return recs
	}

	template := profileFor(req).recommendations
	return slices.Clone(template[:min(limit, len(template))])
}

// dominantStyle reads the learner's style from the payload: an explicit
// "dominant_style", a nested "learning_style" result, or scored
// "responses". Visual is the default.
func dominantStyle(req feature.Request) string {
	if s := req.Payload.String("dominant_style", ""); isStyle(s) {
		return s
	}
	if ls, ok := req.Payload["learning_style"].(map[string]any); ok {
		if s := feature.Payload(ls).String("dominant_style", ""); isStyle(s) {
			return s
		}
	}
	if raw := req.Payload.Maps("responses"); len(raw) > 0 {
		if responses, err := scoring.ParseResponses(raw); err == nil {
			return scoring.Score(responses).Dominant
		}
	}
	return feature.StyleVisual
}

func isStyle(s string) bool {
	return slices.Contains(scoring.Styles, s)
}

var approachByStyle = map[string]string{
	feature.StyleVisual:      "Focus on the diagrams and visual elements while studying this content",
	feature.StyleAuditory:    "Consider reading this content aloud or discussing it with others",
	feature.StyleKinesthetic: "Try to apply these concepts through hands-on exercises as you learn",
	feature.StyleReading:     "Take detailed notes while reading through this material",
}

func rankCatalog(catalog []map[string]any, style string, limit int) feature.Recommendations {
	type candidate struct {
		item     feature.Payload
		affinity float64
	}

	key := style + "_affinity"
	candidates := make([]candidate, 0, len(catalog))
	for _, m := range catalog {
		item := feature.Payload(m)
		if item.String("title", "") == "" {
			continue
		}
		candidates = append(candidates, candidate{item: item, affinity: item.Float(key, 0)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].affinity > candidates[j].affinity
	})

	out := make(feature.Recommendations, 0, min(limit, len(candidates)))
	for i, c := range candidates {
		if i == limit {
			break
		}
		percent, score := affinityScale(c.affinity)
		contentType := c.item.String("content_type", c.item.String("type", "interactive"))
		out = append(out, feature.Recommendation{
			Content: feature.ContentRef{
				ID:         c.item.Int("id", 100+i),
				Title:      c.item.String("title", ""),
				Type:       contentType,
				MatchScore: score,
			},
			Explanation:        fmt.Sprintf("This content has high %s learning affinity (%.0f%%)", style, percent),
			ApproachSuggestion: approachByStyle[style],
		})
	}
	return out
}

// affinityScale accepts affinities given either as percentages or as
// fractions and returns both forms, clamped to range.
func affinityScale(a float64) (percent, fraction float64) {
	if math.IsNaN(a) {
		return 0, 0
	}
	if a > 1 {
		fraction = a / 100
	} else {
		fraction = a
	}
	fraction = math.Max(0, math.Min(1, fraction))
	return math.Round(fraction * 100), fraction
}
