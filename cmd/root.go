package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnpath/learnpath/internal/app"
	"github.com/learnpath/learnpath/internal/config"
	"github.com/learnpath/learnpath/internal/logging"
	"github.com/learnpath/learnpath/internal/store"
)

// cfg is loaded once per invocation by the root PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "learnpath",
	Short: "AI learning analysis with deterministic fallbacks",
	Long: "learnpath turns model replies into validated learning analyses: learning styles, " +
		"content recommendations, weakness and mistake analyses, adaptive tests and study behaviour " +
		"reports. When the model is unavailable or answers badly, a topic-tailored template is used instead.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			loaded.Log.Level = lvl
		}
		logging.Init(loaded.Log)
		cfg = loaded
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEARNPATH_DB env var)")
	rootCmd.PersistentFlags().Bool("fallback-only", false, "Skip the model and always use fallback results (same as USE_FALLBACK_ONLY)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// appOptions collects the per-invocation overrides from persistent flags.
func appOptions(cmd *cobra.Command) app.Options {
	dbPath, _ := cmd.Flags().GetString("db")
	fallbackOnly, _ := cmd.Flags().GetBool("fallback-only")
	return app.Options{DBPath: dbPath, FallbackOnly: fallbackOnly}
}

// openStore opens the event store for the inspection commands, using --db
// (highest priority), then the configured path, then the default XDG path.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Store.Path
	}
	var err error
	if path == "" {
		path, err = store.DefaultDBPath()
	} else {
		err = store.EnsureDir(path)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
