package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
// Results are returned newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Label filters by purpose for LLM events and by feature for runs.
	Label string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RequestID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage per purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns nil, nil when no event has the given ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// PipelineRunData captures the outcome of one feature request.
type PipelineRunData struct {
	RequestID  string
	Feature    string
	Source     string
	Failure    string
	Strategy   string
	Model      string
	LatencyMs  int64
	ResultJSON string
}

// PipelineRun is a stored pipeline outcome.
type PipelineRun struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	PipelineRunData
}

// RunStat summarizes outcomes for one feature.
type RunStat struct {
	Feature      string
	Runs         int
	ModelRuns    int
	FallbackRuns int
	AvgLatencyMs int64
}

// RunRepo records and queries pipeline outcomes.
type RunRepo interface {
	AppendRun(ctx context.Context, data PipelineRunData) error
	QueryRuns(ctx context.Context, opts QueryOpts) ([]PipelineRun, error)
	RunStats(ctx context.Context) ([]RunStat, error)

	// FailureCounts returns how often each failure kind caused a fallback.
	FailureCounts(ctx context.Context) (map[string]int, error)
}
