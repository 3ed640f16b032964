package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/config"
	"github.com/pable/go-rl-metrics/internal/logging"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rlmetrics",
	Short: "Rocket League replay metrics tool",
	Long:  "Reconstruct decoded Rocket League replays and compute player/team performance metrics.",
	// Loaded once per invocation; every subcommand reads cfg and logger.
	PersistentPreRunE: loadRuntime,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.rlmetrics/metrics.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (falls back to $RLMETRICS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func loadRuntime(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	l, err := logging.New(os.Stderr, c.LogLevel)
	if err != nil {
		return err
	}
	cfg, logger = c, l

	// Flag beats config beats default.
	if dbPath == "" {
		dbPath = c.DBPath
	}
	if dbPath == "" {
		dbPath = filepath.Join(mustUserHome(), ".rlmetrics", "metrics.db")
	}
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
