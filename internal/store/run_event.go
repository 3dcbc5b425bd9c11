package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *runRepo) AppendRun(ctx context.Context, data PipelineRunData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO pipeline_runs (
		sequence, created_at, request_id, feature, source, failure,
		strategy, model, latency_ms, result_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.RequestID, data.Feature, data.Source, data.Failure,
		data.Strategy, data.Model, data.LatencyMs, data.ResultJSON,
	)
	if err != nil {
		return fmt.Errorf("save pipeline run: %w", err)
	}
	return nil
}

func (r *runRepo) QueryRuns(ctx context.Context, opts QueryOpts) ([]PipelineRun, error) {
	where, args := opts.where("feature")
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, created_at, request_id, feature,
		source, failure, strategy, model, latency_ms, result_json
		FROM pipeline_runs`+where+` ORDER BY sequence DESC`+opts.limit(), args...)
	if err != nil {
		return nil, fmt.Errorf("query pipeline runs: %w", err)
	}
	defer rows.Close()

	var out []PipelineRun
	for rows.Next() {
		var p PipelineRun
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Sequence, &createdAt, &p.RequestID, &p.Feature,
			&p.Source, &p.Failure, &p.Strategy, &p.Model, &p.LatencyMs, &p.ResultJSON); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		p.Timestamp = fromMillis(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *runRepo) RunStats(ctx context.Context) ([]RunStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feature, COUNT(*),
		SUM(CASE WHEN source = 'model' THEN 1 ELSE 0 END),
		SUM(CASE WHEN source = 'fallback' THEN 1 ELSE 0 END),
		CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM pipeline_runs GROUP BY feature ORDER BY feature`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	var out []RunStat
	for rows.Next() {
		var s RunStat
		if err := rows.Scan(&s.Feature, &s.Runs, &s.ModelRuns, &s.FallbackRuns, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan run stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *runRepo) FailureCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT failure, COUNT(*) FROM pipeline_runs
		WHERE failure != '' GROUP BY failure`)
	if err != nil {
		return nil, fmt.Errorf("failure counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}
