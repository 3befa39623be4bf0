package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/clock"
	"github.com/abhisek/masteryrank/internal/config"
	"github.com/abhisek/masteryrank/internal/logger"
	"github.com/abhisek/masteryrank/internal/store"
	"github.com/abhisek/masteryrank/internal/ui/theme"
)

var rootCmd = &cobra.Command{
	Use:   "masteryrank",
	Short: "Knowledge mastery tracking and study recommendations",
	Long: "masteryrank tracks how well learners know each skill, forecasts forgetting,\n" +
		"plans reviews and recommends study material from an append-only event log.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// Loaded once per invocation by setup.
var (
	cfg config.Config
	log *logger.Logger
	now clock.Clock
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MASTERYRANK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML tuning file (overrides MASTERYRANK_CONFIG env var)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable styled output")
	rootCmd.PersistentFlags().String("now", "", "Evaluate as of this RFC 3339 instant instead of the current time")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(learnersCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(weakCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	l, err := logger.New(c.LogMode)
	if err != nil {
		return err
	}
	cfg, log = c, l

	now = clock.System()
	if v, _ := cmd.Flags().GetString("now"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = clock.Fixed(t.UTC())
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	theme.Enabled = !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or MASTERYRANK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(f.Fd())
}
