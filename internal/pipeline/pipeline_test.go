package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

const fencedTest = "好的，这是为你生成的测试：\n```json\n" + `{
  "questions": [
    {"id": 1, "content": "Python中列表和元组的区别是什么?", "question_type": "single_choice", "options": ["可变性", "语法", "性能", "以上都是"]},
    {"id": 2, "content": "解释字典推导式的用法", "question_type": "short_answer"}
  ],
  "topics_covered": ["Python基础", "数据结构"]
}` + "\n```\n希望对你有帮助。"

func newService(t *testing.T, opts Options, responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	if opts.Invoker == nil {
		opts.Invoker = llm.NewInvoker(mock, llm.Config{Timeout: time.Second})
	}
	if opts.Builder == nil {
		opts.Builder = prompt.NewBuilder(llm.ProviderMock)
	}
	return New(opts), mock
}

func adaptiveRequest() feature.Request {
	return feature.NewRequest(feature.AdaptiveTest, map[string]any{
		"user_id":    1,
		"subject":    "计算机科学",
		"topic":      "Python基础",
		"difficulty": "beginner",
	}, 0)
}

func TestRun_FallbackOnly_PythonBasics(t *testing.T) {
	svc, mock := newService(t, Options{FallbackOnly: true})

	out := svc.Run(context.Background(), adaptiveRequest())

	assert.Equal(t, feature.SourceFallback, out.Source)
	assert.Equal(t, FailureNone, out.Failure)
	assert.Zero(t, out.Latency)
	assert.Zero(t, mock.CallCount())

	test, ok := out.Result.(*feature.AdaptiveTestResult)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(test.Questions), 3)

	texts := 0
	for _, q := range test.Questions {
		if q.QuestionType == feature.QuestionText {
			texts++
		}
	}
	assert.GreaterOrEqual(t, texts, 1)
	assert.Contains(t, test.TopicsCovered, "Python基础")
}

func TestRun_NilInvokerMeansFallbackOnly(t *testing.T) {
	svc := New(Options{})
	out := svc.Run(context.Background(), feature.NewRequest(feature.LearningStyle, nil, 0))
	assert.Equal(t, feature.SourceFallback, out.Source)
	assert.Equal(t, FailureNone, out.Failure)
}

func TestRun_FallbackSurvivesNonNumericCatalog(t *testing.T) {
	svc := New(Options{FallbackOnly: true})
	req := feature.NewRequest(feature.ContentRecommendation, map[string]any{
		"dominant_style": "visual",
		"catalog":        []any{map[string]any{"id": 1, "title": "Intro", "visual_affinity": "NaN"}},
	}, 3)

	var out Outcome
	require.NotPanics(t, func() { out = svc.Run(context.Background(), req) })
	assert.Equal(t, feature.SourceFallback, out.Source)
	recs, ok := out.Result.(feature.Recommendations)
	require.True(t, ok)
	require.NotEmpty(t, recs)
	assert.Equal(t, 0.0, recs[0].Content.MatchScore)
}

func TestRun_ModelPath(t *testing.T) {
	svc, mock := newService(t, Options{}, llm.MockResponse{Text: fencedTest})

	out := svc.Run(context.Background(), adaptiveRequest())

	require.Equal(t, feature.SourceModel, out.Source, "err: %v", out.Err)
	assert.Equal(t, FailureNone, out.Failure)
	assert.Equal(t, extract.FencedBlock, out.Strategy)
	assert.Equal(t, "mock", out.Model)
	assert.NoError(t, out.Err)
	assert.Equal(t, 1, mock.CallCount())
	assert.True(t, mock.Calls[0].JSONMode)

	test, ok := out.Result.(*feature.AdaptiveTestResult)
	require.True(t, ok)
	require.Len(t, test.Questions, 2)
	assert.Equal(t, feature.QuestionChoice, test.Questions[0].QuestionType)
	assert.Equal(t, feature.QuestionText, test.Questions[1].QuestionType)
	assert.Equal(t, "beginner", test.Questions[1].Difficulty)
	assert.Equal(t, "Python基础", test.Questions[1].Topic)
	assert.Equal(t, feature.StandardAdjustmentRules(), test.AdaptiveLogic.AdjustmentRules)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		req      feature.Request
		invoker  Invoker
		response llm.MockResponse
		failure  Failure
		sentinel error
	}{
		{
			name:     "prose reply",
			req:      adaptiveRequest(),
			response: llm.MockResponse{Text: "抱歉，我现在无法生成测试。"},
			failure:  FailureExtraction,
		},
		{
			name:     "truncated JSON",
			req:      adaptiveRequest(),
			response: llm.MockResponse{Text: `{"questions": [{"id": 1, "content": "Q`},
			failure:  FailureExtraction,
		},
		{
			name:     "wrong shape",
			req:      feature.NewRequest(feature.WeaknessAnalysis, map[string]any{"topic": "数据库"}, 0),
			response: llm.MockResponse{Text: `{"weak_areas": [], "improvement_plan": {}}`},
			failure:  FailureValidation,
			sentinel: schema.ErrValidationFailed,
		},
		{
			name:     "provider error",
			req:      feature.NewRequest(feature.MistakeAnalysis, nil, 0),
			response: llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}},
			failure:  FailureTransport,
			sentinel: llm.ErrTransport,
		},
		{
			name:     "slow provider",
			req:      feature.NewRequest(feature.LearningAnalysis, nil, 0),
			invoker:  llm.NewInvoker(llm.NewMockProvider(llm.MockResponse{Text: "{}", Delay: time.Minute}), llm.Config{Timeout: 20 * time.Millisecond}),
			failure:  FailureTimeout,
			sentinel: llm.ErrTimeout,
		},
		{
			name:     "no API key",
			req:      feature.NewRequest(feature.ContentRecommendation, nil, 0),
			invoker:  llm.NewInvoker(nil, llm.Config{Timeout: time.Second}),
			failure:  FailureAuth,
			sentinel: llm.ErrAuthMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, Options{Invoker: tt.invoker}, tt.response)

			out := svc.Run(context.Background(), tt.req)

			assert.Equal(t, feature.SourceFallback, out.Source)
			assert.Equal(t, tt.failure, out.Failure)
			require.Error(t, out.Err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, out.Err, tt.sentinel)
			}

			require.NotNil(t, out.Result)
			assert.Equal(t, tt.req.Feature, out.Result.Feature())

			want, err := json.Marshal(fallback.Generate(tt.req))
			require.NoError(t, err)
			got, err := json.Marshal(out.Result)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestRun_KeepsRequestIDFromContext(t *testing.T) {
	svc, _ := newService(t, Options{FallbackOnly: true})

	ctx := logging.WithRequestID(context.Background(), "req-123")
	out := svc.Run(ctx, feature.NewRequest(feature.LearningStyle, nil, 0))
	assert.Equal(t, "req-123", out.RequestID)

	fresh := svc.Run(context.Background(), feature.NewRequest(feature.LearningStyle, nil, 0))
	assert.NotEmpty(t, fresh.RequestID)
	assert.NotEqual(t, "req-123", fresh.RequestID)
}

func TestRun_RecordsRunsAndMetrics(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New(prometheus.NewRegistry())
	svc, _ := newService(t, Options{Runs: st.RunRepo(), Metrics: m},
		llm.MockResponse{Text: fencedTest},
		llm.MockResponse{Text: "no json here"},
	)

	ctx := context.Background()
	model := svc.Run(ctx, adaptiveRequest())
	fb := svc.Run(ctx, adaptiveRequest())
	require.Equal(t, feature.SourceModel, model.Source)
	require.Equal(t, feature.SourceFallback, fb.Source)

	runs, err := st.RunRepo().QueryRuns(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, fb.RequestID, runs[0].RequestID)
	assert.Equal(t, "fallback", runs[0].Source)
	assert.Equal(t, "extraction_failed", runs[0].Failure)

	assert.Equal(t, model.RequestID, runs[1].RequestID)
	assert.Equal(t, "model", runs[1].Source)
	assert.Equal(t, "fenced_block", runs[1].Strategy)
	assert.Contains(t, runs[1].ResultJSON, "列表和元组")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("adaptive_test", "model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("adaptive_test", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("adaptive_test", "extraction_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Strategies.WithLabelValues("fenced_block")))
}

func TestRun_LogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	svc, _ := newService(t, Options{}, llm.MockResponse{Text: "nothing useful"})
	out := svc.Run(context.Background(), adaptiveRequest())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "pipeline outcome", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "adaptive_test", line["feature"])
	assert.Equal(t, "fallback", line["source"])
	assert.Equal(t, "extraction_failed", line["failure"])
	assert.Equal(t, out.RequestID, line["request_id"])
}

func TestRun_Concurrent(t *testing.T) {
	svc, _ := newService(t, Options{FallbackOnly: true})

	var wg sync.WaitGroup
	outs := make([]Outcome, len(feature.All))
	for i, f := range feature.All {
		wg.Add(1)
		go func(i int, f feature.Feature) {
			defer wg.Done()
			outs[i] = svc.Run(context.Background(), feature.NewRequest(f, map[string]any{"topic": "Web前端"}, 0))
		}(i, f)
	}
	wg.Wait()

	ids := make(map[string]bool)
	for i, f := range feature.All {
		require.NotNil(t, outs[i].Result, f)
		assert.Equal(t, f, outs[i].Result.Feature())
		ids[outs[i].RequestID] = true
	}
	assert.Len(t, ids, len(feature.All))
}
