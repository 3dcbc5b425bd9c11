package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnpath/learnpath/internal/config"
	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/llm"
	"github.com/learnpath/learnpath/internal/pipeline"
	"github.com/learnpath/learnpath/internal/store"
)

const styleReply = `{"visual_score": 80, "auditory_score": 55, "kinesthetic_score": 60, "reading_score": 40, "dominant_style": "visual"}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "app.db")
	return cfg
}

func TestNew_WiresStoreAndProvider(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Model.Provider = llm.ProviderMock

	mock := llm.NewMockProvider(llm.MockResponse{Text: styleReply, Usage: llm.Usage{InputTokens: 120, OutputTokens: 40}})
	a, err := New(ctx, cfg, Options{Provider: mock})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NotNil(t, a.Store)

	out := a.Service.Run(ctx, feature.NewRequest(feature.LearningStyle, nil, 0))
	require.Equal(t, feature.SourceModel, out.Source, "err: %v", out.Err)

	res := out.Result.(*feature.LearningStyleResult)
	require.NotNil(t, res.SecondaryStyle)
	assert.Equal(t, "kinesthetic", *res.SecondaryStyle)

	events, err := a.Store.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "learning-style", events[0].Purpose)
	assert.Equal(t, out.RequestID, events[0].RequestID)
	assert.Equal(t, 120, events[0].InputTokens)

	runs, err := a.Store.RunRepo().QueryRuns(ctx, store.QueryOpts{Label: "learning_style"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "model", runs[0].Source)
}

func TestNew_MissingKeyFallsBack(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store.Enabled = false

	a, err := New(ctx, cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	assert.Nil(t, a.Store)

	out := a.Service.Run(ctx, feature.NewRequest(feature.WeaknessAnalysis, map[string]any{"topic": "SQL查询"}, 0))
	assert.Equal(t, feature.SourceFallback, out.Source)
	assert.Equal(t, pipeline.FailureAuth, out.Failure)
}

func TestNew_FallbackOnly(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Model.Provider = llm.ProviderMock

	mock := llm.NewMockProvider()
	a, err := New(ctx, cfg, Options{Provider: mock, FallbackOnly: true})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	out := a.Service.Run(ctx, feature.NewRequest(feature.AdaptiveTest, map[string]any{"topic": "Python基础"}, 0))
	assert.Equal(t, feature.SourceFallback, out.Source)
	assert.Equal(t, pipeline.FailureNone, out.Failure)
	assert.Zero(t, mock.CallCount())
}

func TestNew_DBPathOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.UseFallbackOnly = true
	override := filepath.Join(t.TempDir(), "nested", "override.db")

	a, err := New(context.Background(), cfg, Options{DBPath: override})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	var file string
	require.NoError(t, a.Store.DB().QueryRow(`SELECT file FROM pragma_database_list WHERE name = 'main'`).Scan(&file))
	assert.Equal(t, override, file)
}

func TestNew_InvalidProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Enabled = false
	cfg.Model.Provider = "carrier-pigeon"

	_, err := New(context.Background(), cfg, Options{})
	assert.Error(t, err)
}
