package cmd

import (
	"log/slog"
	"testing"

	"github.com/mfriesel/flint/internal/config"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		expected string
		secs     int64
	}{
		{"0s", 0},
		{"59s", 59},
		{"1m0s", 60},
		{"1m30s", 90},
		{"1h2m5s", 3725},
	}

	for _, tt := range tests {
		result := formatUptime(tt.secs)
		if result != tt.expected {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.secs, result, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.level); got != tt.expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
		}
	}
}

func TestMaybeSpawnDaemon_NeverFails(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("FLINT_DAEMON_PATH", t.TempDir()+"/missing-flintd")

	cfg := config.DefaultConfig()
	cfg.Daemon.Autostart = true

	// A missing binary must not surface an error to the query path.
	maybeSpawnDaemon(cfg)
}

func TestDaemonCmd_Subcommands(t *testing.T) {
	want := map[string]bool{"start": false, "stop": false, "status": false}
	for _, sub := range daemonCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("daemon subcommand %q not registered", name)
		}
	}
}
