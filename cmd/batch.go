package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/learnpath/learnpath/internal/app"
	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/logging"
	"github.com/learnpath/learnpath/internal/metrics"
	"github.com/learnpath/learnpath/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every feature for one topic and report where each result came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		subject, _ := cmd.Flags().GetString("subject")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		asJSON, _ := cmd.Flags().GetBool("json")
		showMetrics, _ := cmd.Flags().GetBool("metrics")

		a, err := app.New(cmd.Context(), cfg, appOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := logging.WithCorrelationID(cmd.Context(), logging.NewCorrelationID())
		outcomes := make([]pipeline.Outcome, len(feature.All))

		g, gctx := errgroup.WithContext(ctx)
		if concurrency > 0 {
			g.SetLimit(concurrency)
		}
		for i, f := range feature.All {
			req := newRequest(f, samplePayload(f, topic, subject, difficulty), 0)
			g.Go(func() error {
				outcomes[i] = a.Service.Run(gctx, req)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			views := make([]outcomeView, len(outcomes))
			for i, out := range outcomes {
				views[i] = viewOf(out)
			}
			if err := writeJSON(w, views); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(w, "Topic: %s\n\n", topic)
			fmt.Fprintf(w, "%-24s  %-8s  %-18s  %-12s  %8s\n", "Feature", "Source", "Failure", "Strategy", "Ms")
			fmt.Fprintln(w, strings.Repeat("─", 78))
			for _, out := range outcomes {
				fmt.Fprintf(w, "%-24s  %-8s  %-18s  %-12s  %8d\n",
					out.Feature, out.Source, dash(string(out.Failure)), dash(string(out.Strategy)),
					out.Latency.Milliseconds())
			}
		}

		if showMetrics {
			fmt.Fprintln(w)
			return metrics.Dump(w, a.Registry)
		}
		return nil
	},
}

// samplePayload returns representative input for f so every feature has
// something to work with.
func samplePayload(f feature.Feature, topic, subject, difficulty string) map[string]any {
	p := map[string]any{
		"user_id":    1,
		"topic":      topic,
		"subject":    subject,
		"difficulty": difficulty,
	}
	switch f {
	case feature.LearningStyle:
		p["responses"] = []any{
			map[string]any{"category": "visual", "value": 4},
			map[string]any{"category": "visual", "value": 5},
			map[string]any{"category": "auditory", "value": 3},
			map[string]any{"category": "kinesthetic", "value": 4},
			map[string]any{"category": "reading", "value": 2},
		}
	case feature.ContentRecommendation:
		p["learning_style"] = map[string]any{"dominant_style": "visual"}
	case feature.WeaknessAnalysis:
		p["quiz_scores"] = map[string]any{topic + "基础": 0.45, topic + "应用": 0.82}
	case feature.MistakeAnalysis:
		p["error_records"] = []any{
			map[string]any{"question": topic + "练习题", "error": "概念混淆"},
		}
	case feature.LearningAnalysis:
		p["study_time"] = 240
		p["completion_rate"] = 65
		p["interactions"] = 38
		p["content_types"] = []any{"video", "article"}
	}
	return p
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	batchCmd.Flags().StringP("topic", "t", "Python基础", "Topic to run every feature for")
	batchCmd.Flags().String("subject", "计算机科学", "Subject area")
	batchCmd.Flags().String("difficulty", "beginner", "Initial difficulty")
	batchCmd.Flags().IntP("concurrency", "c", 0, "Maximum concurrent requests (0 = all at once)")
	batchCmd.Flags().Bool("json", false, "Print outcomes as JSON")
	batchCmd.Flags().Bool("metrics", false, "Print pipeline metrics after the batch")
}
