package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/daemon"
)

var daemonBackground bool

// daemonStartWait covers the initial index build before the socket
// appears, plus margin.
const daemonStartWait = 45 * time.Second

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the flint daemon",
	Long: `Manage the daemon that keeps a warm index so frontends get
per-keystroke ranking without rebuilding the catalog.

Subcommands:
  start  - Start the daemon (foreground unless --background)
  stop   - Stop the running daemon
  status - Check whether the daemon is running`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long: `Start the daemon. By default it runs in the foreground and logs to
stderr; with --background the flintd binary is spawned detached and this
command waits until it answers on its socket.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if daemon.IsRunning(nil) {
			fmt.Println("Daemon is already running.")
			return nil
		}

		if daemonBackground {
			pid, err := daemon.SpawnAndWait(cfg, newLogger(cfg), daemonStartWait)
			if err != nil {
				return err
			}
			fmt.Printf("Daemon started (pid %d).\n", pid)
			return nil
		}

		logger, closeLog, err := daemonLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		return daemon.RunForeground(cmd.Context(), cfg, logger)
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := daemon.Stop(nil)
		if errors.Is(err, daemon.ErrNotRunning) {
			fmt.Println("Daemon is not running.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println("Daemon stopped.")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorMode()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !daemon.IsRunning(nil) {
			fmt.Printf("Daemon: %s\n", styleDim.Render("not running"))
			return nil
		}

		client := daemon.NewClient(daemon.ClientConfig{SocketPath: cfg.Daemon.SocketPath})
		stats, err := client.Stats()
		if err != nil {
			fmt.Printf("Daemon: %s\n", styleFallback.Render("running, socket not answering"))
			return nil
		}

		fmt.Printf("Daemon: %s\n", styleOK.Render("running"))
		fmt.Printf("  pid:      %d\n", stats.PID)
		fmt.Printf("  uptime:   %s\n", formatUptime(stats.UptimeSecs))
		fmt.Printf("  items:    %d\n", stats.Items)
		fmt.Printf("  history:  %d entries\n", stats.HistoryEntries)
		fmt.Printf("  queries:  %d\n", stats.QueriesServed)
		return nil
	},
}

func init() {
	daemonStartCmd.Flags().BoolVarP(&daemonBackground, "background", "b", false, "spawn flintd detached and wait for its socket")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

// maybeSpawnDaemon starts flintd in the background after a query found
// no daemon answering, so the next invocation hits a warm index. Opt-in
// via daemon.autostart; failure never fails the query that triggered it.
func maybeSpawnDaemon(cfg *config.Config) {
	if !cfg.Daemon.Autostart || daemon.IsRunning(nil) {
		return
	}
	logger := newLogger(cfg)
	if _, err := daemon.Spawn(cfg, logger); err != nil {
		logger.Debug("daemon autostart failed", "error", err)
	}
}

// daemonLogger builds the daemon logger honoring the configured level
// and log file. The returned func closes the file, if any.
func daemonLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := parseLogLevel(cfg.Daemon.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.Daemon.LogFile != "" {
		f, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeLog = func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeLog, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func formatUptime(secs int64) string {
	d := time.Duration(secs) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", secs)
	}
	return d.Truncate(time.Second).String()
}
