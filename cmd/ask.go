package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnpath/learnpath/internal/app"
	"github.com/learnpath/learnpath/internal/feature"
)

var askCmd = &cobra.Command{
	Use:   "ask <feature>",
	Short: "Run one feature and print the result with its provenance",
	Long: "Run one feature through the pipeline. Features: " + featureNames() + ".\n\n" +
		"The payload is a JSON object, e.g.\n" +
		`  learnpath ask adaptive-test --payload '{"topic": "Python基础", "difficulty": "beginner"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := feature.Parse(args[0])
		if err != nil {
			return err
		}

		inline, _ := cmd.Flags().GetString("payload")
		path, _ := cmd.Flags().GetString("file")
		payload, err := readPayload(cmd.InOrStdin(), inline, path)
		if err != nil {
			return err
		}
		for _, key := range []string{"topic", "subject", "difficulty"} {
			if v, _ := cmd.Flags().GetString(key); v != "" {
				payload[key] = v
			}
		}
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := app.New(cmd.Context(), cfg, appOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		out := a.Service.Run(cmd.Context(), newRequest(f, payload, limit))
		return writeJSON(cmd.OutOrStdout(), viewOf(out))
	},
}

// newRequest applies the configured recommendation limit when neither the
// flag nor the payload names one.
func newRequest(f feature.Feature, payload map[string]any, limit int) feature.Request {
	if limit <= 0 {
		if _, ok := payload["limit"]; !ok {
			limit = cfg.Recommend.Limit
		}
	}
	return feature.NewRequest(f, payload, limit)
}

func featureNames() string {
	names := make([]string, len(feature.All))
	for i, f := range feature.All {
		names[i] = f.Purpose()
	}
	return strings.Join(names, ", ")
}

func init() {
	askCmd.Flags().String("payload", "", "Request payload as a JSON object")
	askCmd.Flags().StringP("file", "f", "", `Read the payload from a file ("-" for stdin)`)
	askCmd.Flags().String("topic", "", "Set payload.topic")
	askCmd.Flags().String("subject", "", "Set payload.subject")
	askCmd.Flags().String("difficulty", "", "Set payload.difficulty")
	askCmd.Flags().IntP("limit", "n", 0, fmt.Sprintf("Maximum recommendations (default from config, %d)", feature.DefaultLimit))
}
