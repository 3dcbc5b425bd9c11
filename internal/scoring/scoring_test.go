package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnpath/learnpath/internal/feature"
)

func TestScore_MeanTimesTwenty(t *testing.T) {
	v := Score([]Response{
		{Category: "visual", Value: 5},
		{Category: "visual", Value: 3},
		{Category: "auditory", Value: 1},
	})

	assert.Equal(t, 80.0, v.Visual)
	assert.Equal(t, 20.0, v.Auditory)
	assert.Equal(t, 0.0, v.Kinesthetic)
	assert.Equal(t, 0.0, v.Reading)
	assert.Equal(t, "visual", v.Dominant)
	require.NotNil(t, v.Secondary)
	assert.Equal(t, "auditory", *v.Secondary)
}

func TestScore_Empty(t *testing.T) {
	v := Score(nil)

	assert.Zero(t, v.Visual)
	assert.Zero(t, v.Auditory)
	assert.Zero(t, v.Kinesthetic)
	assert.Zero(t, v.Reading)
	assert.Equal(t, "visual", v.Dominant)
	require.NotNil(t, v.Secondary)
	assert.Equal(t, "auditory", *v.Secondary)
}

func TestScore_TieBreakPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		responses []Response
		dominant  string
		secondary string
	}{
		{
			name: "reading and kinesthetic tie",
			responses: []Response{
				{Category: "reading", Value: 4},
				{Category: "kinesthetic", Value: 4},
			},
			dominant:  "kinesthetic",
			secondary: "reading",
		},
		{
			name: "all equal",
			responses: []Response{
				{Category: "reading", Value: 3},
				{Category: "kinesthetic", Value: 3},
				{Category: "auditory", Value: 3},
				{Category: "visual", Value: 3},
			},
			dominant:  "visual",
			secondary: "auditory",
		},
		{
			name: "reading wins outright",
			responses: []Response{
				{Category: "reading", Value: 5},
				{Category: "auditory", Value: 2},
			},
			dominant:  "reading",
			secondary: "auditory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Score(tt.responses)
			assert.Equal(t, tt.dominant, v.Dominant)
			require.NotNil(t, v.Secondary)
			assert.Equal(t, tt.secondary, *v.Secondary)
		})
	}
}

func TestScore_IgnoresUnknownCategory(t *testing.T) {
	v := Score([]Response{
		{Category: "olfactory", Value: 5},
		{Category: "reading", Value: 2},
	})
	assert.Equal(t, 40.0, v.Reading)
	assert.Equal(t, "reading", v.Dominant)
}

func TestScore_RangeAndDeterminism(t *testing.T) {
	in := []Response{
		{Category: "visual", Value: 1},
		{Category: "auditory", Value: 5},
		{Category: "kinesthetic", Value: 2},
		{Category: "reading", Value: 4},
	}
	a, b := Score(in), Score(in)
	assert.Equal(t, a, b)
	for _, s := range Styles {
		assert.GreaterOrEqual(t, a.Get(s), 0.0)
		assert.LessOrEqual(t, a.Get(s), 100.0)
	}
}

func TestVector_Result(t *testing.T) {
	v := Score([]Response{{Category: "auditory", Value: 4}})
	r := v.Result()

	assert.Equal(t, feature.LearningStyle, r.Feature())
	assert.Equal(t, 80.0, r.AuditoryScore)
	assert.Equal(t, "auditory", r.DominantStyle)
	require.NotNil(t, r.SecondaryStyle)
	assert.Equal(t, "visual", *r.SecondaryStyle)
}

func TestSecondary_SkipsGivenDominant(t *testing.T) {
	scores := map[string]float64{"visual": 90, "auditory": 40, "kinesthetic": 70, "reading": 70}

	assert.Equal(t, "kinesthetic", Secondary(scores, "visual"))
	assert.Equal(t, "visual", Secondary(scores, "reading"))
}

func TestParseResponses(t *testing.T) {
	got, err := ParseResponses([]map[string]any{
		{"category": "visual", "value": 5.0},
		{"category": "reading", "answer": "3"},
		{"category": "auditory", "response_value": map[string]any{"answer": 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Response{
		{Category: "visual", Value: 5},
		{Category: "reading", Value: 3},
		{Category: "auditory", Value: 2},
	}, got)
}

func TestParseResponses_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{"too high", map[string]any{"category": "visual", "value": 6.0}},
		{"zero", map[string]any{"category": "visual", "value": 0.0}},
		{"fractional", map[string]any{"category": "visual", "value": 2.5}},
		{"missing value", map[string]any{"category": "visual"}},
		{"unknown category", map[string]any{"category": "smell", "value": 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponses([]map[string]any{tt.in})
			assert.Error(t, err)
		})
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions("kinesthetic")
	require.Len(t, got, 7)
	assert.Equal(t, "通过实际操作学习新概念", got[0])
	assert.Equal(t, "为学习设定具体目标和时间表", got[6])

	mixed := Suggestions("")
	assert.Equal(t, "尝试不同的学习方法，找出最适合你的方式", mixed[0])
}

func TestStyleRecommendations(t *testing.T) {
	got := StyleRecommendations("auditory")
	require.Len(t, got, 2)
	assert.Equal(t, "audio", got[0].ContentType)

	assert.Equal(t, StyleRecommendations("reading"), StyleRecommendations("unknown"))
}

func TestCompareProgress(t *testing.T) {
	latest := Vector{Visual: 80, Auditory: 40, Kinesthetic: 60, Reading: 60}

	first := CompareProgress(latest, nil)
	assert.Equal(t, TrendFirst, first.Trend)
	assert.Equal(t, "初次评估", first.Trend.Label())
	assert.Nil(t, first.Changes)
	assert.Equal(t, 80.0, first.Current["visual"])

	prev := Vector{Visual: 60, Auditory: 50, Kinesthetic: 60, Reading: 62}
	p := CompareProgress(latest, &prev)
	assert.Equal(t, 20.0, p.Changes["visual"])
	assert.Equal(t, -10.0, p.Changes["auditory"])
	assert.Equal(t, []string{"visual"}, p.Improved)
	assert.Equal(t, []string{"auditory"}, p.Declined)
	assert.Equal(t, TrendSteady, p.Trend)

	same := CompareProgress(latest, &latest)
	assert.Equal(t, TrendStable, same.Trend)

	worse := Vector{Visual: 100, Auditory: 60, Kinesthetic: 60, Reading: 60}
	assert.Equal(t, TrendAttention, CompareProgress(latest, &worse).Trend)
}
