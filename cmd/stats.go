package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model versus fallback outcomes per feature",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.RunRepo().RunStats(ctx)
		if err != nil {
			return fmt.Errorf("query run stats: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(w, "No pipeline runs recorded yet.")
			return nil
		}

		fmt.Fprintln(w, "Outcomes by Feature")
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-24s  %6s  %8s  %8s  %8s  %8s\n",
			"Feature", "Runs", "Model", "Fallback", "Model %", "Avg Ms")
		fmt.Fprintln(w, strings.Repeat("─", 72))

		var runs, model, fb int
		for _, st := range stats {
			fmt.Fprintf(w, "%-24s  %6d  %8d  %8d  %7.0f%%  %8d\n",
				st.Feature, st.Runs, st.ModelRuns, st.FallbackRuns, share(st.ModelRuns, st.Runs), st.AvgLatencyMs)
			runs += st.Runs
			model += st.ModelRuns
			fb += st.FallbackRuns
		}
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-24s  %6d  %8d  %8d  %7.0f%%\n", "TOTAL", runs, model, fb, share(model, runs))

		failures, err := s.RunRepo().FailureCounts(ctx)
		if err != nil {
			return fmt.Errorf("query failure counts: %w", err)
		}
		if len(failures) == 0 {
			return nil
		}

		kinds := make([]string, 0, len(failures))
		for k := range failures {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool {
			if failures[kinds[i]] != failures[kinds[j]] {
				return failures[kinds[i]] > failures[kinds[j]]
			}
			return kinds[i] < kinds[j]
		})

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fallback Causes")
		fmt.Fprintln(w, strings.Repeat("─", 32))
		for _, k := range kinds {
			fmt.Fprintf(w, "%-22s  %8d\n", k, failures[k])
		}
		return nil
	},
}

func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
