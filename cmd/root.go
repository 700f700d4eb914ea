package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnlens/internal/config"
	"github.com/abhisek/learnlens/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "learnlens",
	Short: "Mastery and spaced-repetition engine for generated quizzes",
	Long: "LearnLens records graded answers and turns them into topic mastery, " +
		"SM-2 review schedules, XP, levels and streaks.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides LEARNLENS_DB env var)")
	pf.String("config", "", "Path to a YAML config file (overrides LEARNLENS_CONFIG env var)")
	pf.String("env-file", ".env", "Dotenv file loaded before reading LEARNLENS_ variables")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "console", "Log format: console or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges defaults, the config file, the environment and the
// command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("LEARNLENS_CONFIG")
	}
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(config.Sources{File: path, EnvFile: envFile, Flags: cmd.Flags()})
}

// resolveDBPath returns the configured database path (--db flag, then
// LEARNLENS_DB), falling back to the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
