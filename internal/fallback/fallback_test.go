package fallback

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/schema"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		topic string
		want  Template
	}{
		{"Python基础", Python},
		{"编程入门", Python},
		{"PYTHON advanced", Python},
		{"数据库设计", Database},
		{"SQL查询", Database},
		{"Database Systems", Database},
		{"数据分析", Data},
		{"Big Data", Data},
		{"Web开发", Web},
		{"前端工程", Web},
		{"HTML5", Web},
		{"人工智能导论", AI},
		{"机器学习", AI},
		{"AI入门", AI},
		{"intro to ai", AI},
		{"email etiquette", Generic},
		{"maintenance", Generic},
		{"中国历史", Generic},
		{"", Generic},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.topic))
		})
	}
}

var topics = []string{"Python基础", "数据库", "数据分析", "Web前端", "AI入门", "中国历史", ""}

func TestGenerate_SelfConsistent(t *testing.T) {
	v := schema.New()
	for _, f := range feature.All {
		for _, topic := range topics {
			req := feature.NewRequest(f, map[string]any{"topic": topic}, 0)
			t.Run(string(f)+"/"+topic, func(t *testing.T) {
				res := Generate(req)
				require.NotNil(t, res)
				assert.Equal(t, f, res.Feature())
				assert.NoError(t, schema.Check(res))

				_, err := v.Revalidate(res, req)
				assert.NoError(t, err)
			})
		}
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, f := range feature.All {
		req := feature.NewRequest(f, map[string]any{
			"topic":           "数据分析",
			"difficulty":      "intermediate",
			"completion_rate": 40,
			"catalog": []any{
				map[string]any{"id": 1, "title": "A", "visual_affinity": 60},
				map[string]any{"id": 2, "title": "B", "visual_affinity": 90},
			},
		}, 2)

		first, err := json.Marshal(Generate(req))
		require.NoError(t, err)
		second, err := json.Marshal(Generate(req))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), "feature %s", f)
	}
}

func TestGenerate_ResultsDoNotShareTemplates(t *testing.T) {
	req := feature.NewRequest(feature.WeaknessAnalysis, map[string]any{"topic": "Python"}, 0)

	first := WeaknessAnalysis(req)
	first.WeakAreas[0].Topic = "changed"
	first.WeakAreas[0].SuggestedResources[0].Title = "changed"
	first.ImprovementPlan.ShortTermGoals[0] = "changed"

	second := WeaknessAnalysis(req)
	assert.NotEqual(t, "changed", second.WeakAreas[0].Topic)
	assert.NotEqual(t, "changed", second.WeakAreas[0].SuggestedResources[0].Title)
	assert.NotEqual(t, "changed", second.ImprovementPlan.ShortTermGoals[0])

	test := AdaptiveTest(feature.NewRequest(feature.AdaptiveTest, map[string]any{"topic": "Python"}, 0))
	test.Questions[0].Options[0] = "changed"
	again := AdaptiveTest(feature.NewRequest(feature.AdaptiveTest, map[string]any{"topic": "Python"}, 0))
	assert.Equal(t, "len()", again.Questions[0].Options[0])
}

func TestAdaptiveTest_PythonTopic(t *testing.T) {
	req := feature.NewRequest(feature.AdaptiveTest, map[string]any{"topic": "Python基础"}, 0)
	res := AdaptiveTest(req)

	require.GreaterOrEqual(t, len(res.Questions), 3)
	assert.Len(t, res.Questions, 4)

	var texts int
	for i, q := range res.Questions {
		assert.Equal(t, i+1, q.ID)
		if q.QuestionType == feature.QuestionText {
			texts++
		}
	}
	assert.Equal(t, 1, texts)

	assert.Equal(t, "Python基础的问题3", res.Questions[2].Content)
	assert.Equal(t, []string{"选项A", "选项B", "选项C", "选项D"}, res.Questions[2].Options)
	assert.Equal(t, "请简要描述您对Python基础的理解。", res.Questions[3].Content)
	assert.Equal(t, []string{"Python基础", "Python基础基础", "Python基础应用"}, res.TopicsCovered)
	assert.Equal(t, "auto", res.EstimatedDifficulty)
}

func TestAdaptiveTest_GenericUsesTopicAndDifficulty(t *testing.T) {
	req := feature.NewRequest(feature.AdaptiveTest, map[string]any{"topic": "中国历史", "difficulty": "hard"}, 0)
	res := AdaptiveTest(req)

	require.Len(t, res.Questions, 3)
	assert.Equal(t, "关于中国历史，以下说法正确的是？", res.Questions[0].Content)
	assert.Equal(t, feature.QuestionText, res.Questions[1].QuestionType)
	assert.Equal(t, "hard", res.Questions[2].Difficulty)
	assert.Equal(t, "hard", res.AdaptiveLogic.InitialDifficulty)
}

func TestAdaptiveTest_SubjectWhenNoTopic(t *testing.T) {
	req := feature.NewRequest(feature.AdaptiveTest, map[string]any{"subject": "数据科学"}, 0)
	res := AdaptiveTest(req)

	assert.Equal(t, "数据科学", res.TopicsCovered[0])
	assert.Equal(t, "什么是数据规范化？", res.Questions[0].Content)
}

func TestLearningStyle(t *testing.T) {
	t.Run("static profile", func(t *testing.T) {
		res := LearningStyle(feature.NewRequest(feature.LearningStyle, nil, 0))
		assert.Equal(t, 75.0, res.VisualScore)
		assert.Equal(t, 65.0, res.ReadingScore)
		assert.Equal(t, "visual", res.DominantStyle)
		require.NotNil(t, res.SecondaryStyle)
		assert.Equal(t, "reading", *res.SecondaryStyle)
	})

	t.Run("scored responses", func(t *testing.T) {
		req := feature.NewRequest(feature.LearningStyle, map[string]any{
			"responses": []any{
				map[string]any{"category": "kinesthetic", "value": 5},
				map[string]any{"category": "auditory", "value": 2},
			},
		}, 0)
		res := LearningStyle(req)
		assert.Equal(t, 100.0, res.KinestheticScore)
		assert.Equal(t, 40.0, res.AuditoryScore)
		assert.Equal(t, "kinesthetic", res.DominantStyle)
		assert.Equal(t, "auditory", *res.SecondaryStyle)
	})

	t.Run("invalid responses fall back to static", func(t *testing.T) {
		req := feature.NewRequest(feature.LearningStyle, map[string]any{
			"responses": []any{map[string]any{"category": "visual", "value": 9}},
		}, 0)
		assert.Equal(t, 75.0, LearningStyle(req).VisualScore)
	})
}

func TestContentRecommendation_Catalog(t *testing.T) {
	req := feature.NewRequest(feature.ContentRecommendation, map[string]any{
		"learning_style": map[string]any{"dominant_style": "auditory"},
		"catalog": []any{
			map[string]any{"id": 1, "title": "Reading list", "content_type": "article", "auditory_affinity": 40},
			map[string]any{"id": 2, "title": "Podcast", "content_type": "audio", "auditory_affinity": 95},
			map[string]any{"id": 3, "title": "Lecture", "content_type": "video", "auditory_affinity": 80},
			map[string]any{"id": 4, "content_type": "video", "auditory_affinity": 99},
		},
	}, 2)

	recs := ContentRecommendation(req)
	require.Len(t, recs, 2)

	assert.Equal(t, 2, recs[0].Content.ID)
	assert.Equal(t, "audio", recs[0].Content.Type)
	assert.InDelta(t, 0.95, recs[0].Content.MatchScore, 1e-9)
	assert.Equal(t, "This content has high auditory learning affinity (95%)", recs[0].Explanation)
	assert.Equal(t, "Consider reading this content aloud or discussing it with others", recs[0].ApproachSuggestion)
	assert.Equal(t, 3, recs[1].Content.ID)
}

func TestContentRecommendation_NonFiniteAffinity(t *testing.T) {
	req := feature.NewRequest(feature.ContentRecommendation, map[string]any{
		"learning_style": map[string]any{"dominant_style": "visual"},
		"catalog": []any{
			map[string]any{"id": 1, "title": "Intro", "visual_affinity": "NaN"},
			map[string]any{"id": 2, "title": "Deep dive", "visual_affinity": "+Inf"},
			map[string]any{"id": 3, "title": "Diagram", "visual_affinity": math.NaN()},
			map[string]any{"id": 4, "title": "Chart", "visual_affinity": math.Inf(-1)},
			map[string]any{"id": 5, "title": "Video", "visual_affinity": 70},
		},
	}, 5)

	recs := ContentRecommendation(req)
	if len(recs) != 5 {
		t.Fatalf("got %d recommendations, want 5", len(recs))
	}
	if recs[0].Content.ID != 5 {
		t.Errorf("first recommendation = %d, want 5", recs[0].Content.ID)
	}
	for _, r := range recs {
		if s := r.Content.MatchScore; math.IsNaN(s) || s < 0 || s > 1 {
			t.Errorf("item %d: match score %v out of range", r.Content.ID, s)
		}
	}

	if _, err := schema.New().Revalidate(Generate(req), req); err != nil {
		t.Fatalf("Revalidate: %v", err)
	}
}

func TestAffinityScale(t *testing.T) {
	tests := []struct {
		in                float64
		percent, fraction float64
	}{
		{85, 85, 0.85},
		{0.4, 40, 0.4},
		{250, 100, 1},
		{-3, 0, 0},
		{math.NaN(), 0, 0},
	}
	for _, tt := range tests {
		p, f := affinityScale(tt.in)
		if p != tt.percent || f != tt.fraction {
			t.Errorf("affinityScale(%v) = (%v, %v), want (%v, %v)", tt.in, p, f, tt.percent, tt.fraction)
		}
	}
}

func TestContentRecommendation_StyleFromResponses(t *testing.T) {
	req := feature.NewRequest(feature.ContentRecommendation, map[string]any{
		"responses": []any{map[string]any{"category": "reading", "value": 5}},
		"catalog": []any{
			map[string]any{"id": 1, "title": "Notes", "reading_affinity": 0.7, "visual_affinity": 0.1},
			map[string]any{"id": 2, "title": "Slides", "reading_affinity": 0.2, "visual_affinity": 0.9},
		},
	}, 0)

	recs := ContentRecommendation(req)
	require.Len(t, recs, 2)
	assert.Equal(t, "Notes", recs[0].Content.Title)
	assert.Equal(t, "This content has high reading learning affinity (70%)", recs[0].Explanation)
	assert.Equal(t, "interactive", recs[0].Content.Type)
}

func TestContentRecommendation_TemplateLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 3},
		{1, 1},
		{2, 2},
		{10, 3},
	}
	for _, tt := range tests {
		req := feature.NewRequest(feature.ContentRecommendation, map[string]any{"topic": "Web"}, tt.limit)
		recs := ContentRecommendation(req)
		assert.Len(t, recs, tt.want, "limit %d", tt.limit)
		assert.Equal(t, "前端布局互动教程", recs[0].Content.Title)
	}
}

func TestMistakeAnalysis_FocusAreasFollowMistakes(t *testing.T) {
	res := MistakeAnalysis(feature.NewRequest(feature.MistakeAnalysis, map[string]any{"topic": "SQL"}, 0))

	require.Len(t, res.CommonMistakes, 2)
	assert.Equal(t, []string{"JOIN条件遗漏", "NULL值处理"}, res.RemediationPlan.FocusAreas)
	assert.Len(t, res.MistakePatterns, 3)
}

func TestLearningAnalysis_PayloadAdjustments(t *testing.T) {
	low := LearningAnalysis(feature.NewRequest(feature.LearningAnalysis, map[string]any{
		"completion_rate": "35",
		"content_types":   []any{"视频", "测验"},
	}, 0))
	assert.Contains(t, low.Weaknesses, "内容完成率偏低")
	assert.Len(t, low.Recommendations, 3)
	assert.Equal(t, []string{"视频", "测验"}, low.OptimalContentTypes)

	high := LearningAnalysis(feature.NewRequest(feature.LearningAnalysis, map[string]any{"completion_rate": 92.5}, 0))
	assert.Contains(t, high.Strengths, "内容完成率高")
	assert.Equal(t, []string{"视频教程", "互动练习"}, high.OptimalContentTypes)
}

func TestGenerate_UnknownFeaturePanics(t *testing.T) {
	assert.Panics(t, func() {
		Generate(feature.Request{Feature: "nope"})
	})
}
