// Package cmd implements the flint command tree.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flint",
	Short: "application launcher backend for keyboard-driven frontends",
	Long: `flint - application launcher backend
  - gathers applications from desktop entries, $PATH, flatpak and snap
  - ranks them per keystroke, biased by what you actually launch
  - evaluates inline arithmetic (type "22*7" and get an answer)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/flint/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the effective configuration: the --config file when
// given, otherwise the default location with a missing file yielding
// defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

// newLogger builds the CLI logger. Commands are short-lived so logs go to
// stderr; --verbose switches to debug level regardless of config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	} else if cfg != nil && cfg.Daemon.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
