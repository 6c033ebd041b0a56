// flintd is the flint background daemon. It keeps a warm application
// index and answers ranking queries over a unix socket so launcher
// frontends stay responsive on every keystroke.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/daemon"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flintd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := os.Stderr
	if cfg.Daemon.LogFile != "" {
		f, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: logLevel(cfg.Daemon.LogLevel),
	}))

	// Blocks until shutdown.
	return daemon.RunForeground(context.Background(), cfg, logger)
}

func logLevel(level string) slog.Level {
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
