package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"llm_request_events", "pipeline_runs", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{RequestID: "r1", Provider: "zhipu", Model: "glm-4-plus", Purpose: "adaptive-test", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nq", ResponseBody: "{}"},
		{RequestID: "r2", Provider: "zhipu", Model: "glm-4-plus", Purpose: "adaptive-test", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{RequestID: "r3", Provider: "zhipu", Model: "glm-4", Purpose: "learning-analysis", LatencyMs: 10, Success: false, ErrorMessage: "context deadline exceeded"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].RequestID != "r3" {
		t.Errorf("expected newest first, got %q", all[0].RequestID)
	}
	if all[0].Success || all[0].ErrorMessage == "" {
		t.Errorf("expected failed event with message, got %+v", all[0])
	}
	if time.Since(all[0].Timestamp) > time.Minute {
		t.Errorf("unexpected timestamp %v", all[0].Timestamp)
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Label: "adaptive-test", Limit: 1})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].RequestID != "r2" {
		t.Fatalf("unexpected filtered result %+v", filtered)
	}

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ResponseBody != "{}" || got.RequestBody != "[user]\nq" {
		t.Fatalf("unexpected event %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing event, got %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "adaptive-test" {
		t.Fatalf("unexpected purpose usage %+v", byPurpose)
	}
	if byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 400 || byPurpose[0].AvgLatencyMs != 300 {
		t.Fatalf("unexpected adaptive-test usage %+v", byPurpose[0])
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Model != "glm-4-plus" || byModel[0].OutputTokens != 200 {
		t.Fatalf("expected only successful calls to count, got %+v", byModel)
	}
}

func TestPipelineRuns(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	runs := []PipelineRunData{
		{RequestID: "a", Feature: "adaptive_test", Source: "model", Strategy: "fenced_block", Model: "glm-4-plus", LatencyMs: 900},
		{RequestID: "b", Feature: "adaptive_test", Source: "fallback", Failure: "timeout", LatencyMs: 100},
		{RequestID: "c", Feature: "learning_style", Source: "fallback", Failure: "auth_missing"},
		{RequestID: "d", Feature: "learning_style", Source: "fallback", Failure: "timeout"},
	}
	for _, r := range runs {
		if err := repo.AppendRun(ctx, r); err != nil {
			t.Fatalf("append run: %v", err)
		}
	}

	stats, err := repo.RunStats(ctx)
	if err != nil {
		t.Fatalf("run stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 features, got %+v", stats)
	}
	at := stats[0]
	if at.Feature != "adaptive_test" || at.Runs != 2 || at.ModelRuns != 1 || at.FallbackRuns != 1 || at.AvgLatencyMs != 500 {
		t.Fatalf("unexpected adaptive_test stat %+v", at)
	}

	failures, err := repo.FailureCounts(ctx)
	if err != nil {
		t.Fatalf("failure counts: %v", err)
	}
	if failures["timeout"] != 2 || failures["auth_missing"] != 1 {
		t.Fatalf("unexpected failure counts %v", failures)
	}

	latest, err := repo.QueryRuns(ctx, QueryOpts{Label: "learning_style", Limit: 10})
	if err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if len(latest) != 2 || latest[0].RequestID != "d" {
		t.Fatalf("unexpected runs %+v", latest)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RunRepo().AppendRun(ctx, PipelineRunData{Feature: "x", Source: "model"}); err != nil {
		t.Fatal(err)
	}

	events, _ := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	runs, _ := s.RunRepo().QueryRuns(ctx, QueryOpts{})
	if events[0].Sequence != 1 || runs[0].Sequence != 2 {
		t.Fatalf("expected sequences 1 and 2, got %d and %d", events[0].Sequence, runs[0].Sequence)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RunRepo().AppendRun(ctx, PipelineRunData{Feature: "x", Source: "fallback"}); err != nil {
		t.Fatal(err)
	}

	events, runs, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if events != 2 || runs != 1 {
		t.Fatalf("expected 2 events and 1 run deleted, got %d and %d", events, runs)
	}

	if err := s.RunRepo().AppendRun(ctx, PipelineRunData{Feature: "x", Source: "model"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.RunRepo().QueryRuns(ctx, QueryOpts{})
	if len(got) != 1 || got[0].Sequence != 4 {
		t.Fatalf("expected one run with sequence 4 after reset, got %+v", got)
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "db.sqlite")
	t.Setenv("LEARNPATH_DB", p)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != p {
		t.Fatalf("got %q, want %q", got, p)
	}
}
