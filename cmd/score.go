package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score learning-style assessment answers",
	Long: "Score Likert answers (1-5) per learning style without calling the model.\n\n" +
		"Input is a JSON object with a \"responses\" list, e.g.\n" +
		`  learnpath score --payload '{"responses": [{"category": "visual", "value": 5}]}'` + "\n\n" +
		"Pass --previous with the prior scores to see progress between assessments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		inline, _ := cmd.Flags().GetString("payload")
		path, _ := cmd.Flags().GetString("file")
		payload, err := readPayload(cmd.InOrStdin(), inline, path)
		if err != nil {
			return err
		}

		responses, err := scoring.ParseResponses(feature.Payload(payload).Maps("responses"))
		if err != nil {
			return fmt.Errorf("invalid responses: %w", err)
		}
		v := scoring.Score(responses)

		var previous *scoring.Vector
		if prev, _ := cmd.Flags().GetString("previous"); prev != "" {
			p, err := parsePrevious(prev)
			if err != nil {
				return err
			}
			previous = &p
		}

		report := struct {
			Result          *feature.LearningStyleResult `json:"result"`
			Suggestions     []string                     `json:"suggestions"`
			Recommendations []scoring.StyleItem          `json:"recommendations"`
			Progress        scoring.Progress             `json:"progress"`
			TrendLabel      string                       `json:"trend_label"`
		}{
			Result:          v.Result(),
			Suggestions:     scoring.Suggestions(v.Dominant),
			Recommendations: scoring.StyleRecommendations(v.Dominant),
			Progress:        scoring.CompareProgress(v, previous),
		}
		report.TrendLabel = report.Progress.Trend.Label()
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

// parsePrevious reads a {"visual": 60, ...} score object.
func parsePrevious(raw string) (scoring.Vector, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return scoring.Vector{}, fmt.Errorf("--previous must map styles to scores: %w", err)
	}
	for style, s := range m {
		if s < 0 || s > 100 {
			return scoring.Vector{}, fmt.Errorf("--previous: %s score %v outside 0..100", style, s)
		}
	}
	return scoring.Vector{
		Visual:      m[feature.StyleVisual],
		Auditory:    m[feature.StyleAuditory],
		Kinesthetic: m[feature.StyleKinesthetic],
		Reading:     m[feature.StyleReading],
	}, nil
}

func init() {
	scoreCmd.Flags().String("payload", "", "Assessment answers as a JSON object")
	scoreCmd.Flags().StringP("file", "f", "", `Read the answers from a file ("-" for stdin)`)
	scoreCmd.Flags().String("previous", "", `Previous scores, e.g. '{"visual": 60, "auditory": 50}'`)
}
