package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		name, _ := cmd.Flags().GetString("feature")
		showResult, _ := cmd.Flags().GetBool("result")

		opts := store.QueryOpts{Limit: limit}
		if name != "" {
			f, err := feature.Parse(name)
			if err != nil {
				return err
			}
			opts.Label = string(f)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.RunRepo().QueryRuns(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No pipeline runs found.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-24s  %-8s  %-18s  %-12s  %7s\n",
			"ID", "Timestamp", "Feature", "Source", "Failure", "Strategy", "Ms")
		fmt.Fprintln(w, strings.Repeat("─", 104))
		for _, r := range runs {
			fmt.Fprintf(w, "%-5d  %-19s  %-24s  %-8s  %-18s  %-12s  %7d\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Feature,
				r.Source,
				dash(r.Failure),
				dash(r.Strategy),
				r.LatencyMs,
			)
			if showResult {
				fmt.Fprintf(w, "       %s\n", r.ResultJSON)
			}
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsCmd.Flags().String("feature", "", "Filter by feature (e.g. adaptive-test)")
	runsCmd.Flags().Bool("result", false, "Print the stored result JSON under each run")
}
