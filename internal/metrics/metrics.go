// Package metrics records pipeline outcomes as Prometheus series.
//
// Series are registered on the Registerer handed to New, so a process can
// keep one registry per command invocation and tests can use a fresh one.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "learnpath"

// Metrics holds the pipeline collectors.
type Metrics struct {
	// Runs counts completed pipeline runs by feature and result source.
	Runs *prometheus.CounterVec

	// Failures counts model-path failures by feature and failure kind.
	Failures *prometheus.CounterVec

	// Strategies counts which extraction strategy produced a payload.
	Strategies *prometheus.CounterVec

	// ModelLatency tracks wall time of model calls, including ones that failed.
	ModelLatency *prometheus.HistogramVec
}

// New registers the pipeline collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"feature", "source"},
		),
		Failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_failures_total",
				Help:      "Total number of model path failures that fell back to templates",
			},
			[]string{"feature", "kind"},
		),
		Strategies: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_strategy_total",
				Help:      "Total number of payloads extracted per strategy",
			},
			[]string{"strategy"},
		),
		ModelLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Model call latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"feature"},
		),
	}
}

// Run is the subset of a pipeline outcome the collectors care about.
type Run struct {
	Feature  string
	Source   string
	Failure  string
	Strategy string

	// Latency is zero when the model was never called.
	Latency time.Duration
}

// Observe records one pipeline run. A nil receiver is a no-op.
func (m *Metrics) Observe(r Run) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(r.Feature, r.Source).Inc()
	if r.Failure != "" {
		m.Failures.WithLabelValues(r.Feature, r.Failure).Inc()
	}
	if r.Strategy != "" {
		m.Strategies.WithLabelValues(r.Strategy).Inc()
	}
	if r.Latency > 0 {
		m.ModelLatency.WithLabelValues(r.Feature).Observe(r.Latency.Seconds())
	}
}

// Dump writes every gathered series as one "name{labels} value" line.
// Histograms are summarised as _count and _sum lines.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				_, err = fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				_, err = fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				_, err = fmt.Fprintf(w, "%s_count%s %d\n%s_sum%s %g\n",
					mf.GetName(), labels, h.GetSampleCount(),
					mf.GetName(), labels, h.GetSampleSum())
			default:
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
