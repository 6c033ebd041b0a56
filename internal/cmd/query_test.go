package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfriesel/flint/internal/config"
)

func TestQueryCmd_Flags(t *testing.T) {
	expectedFlags := []struct {
		name      string
		shorthand string
	}{
		{"limit", "n"},
		{"format", ""},
		{"color", ""},
		{"from-stdin", ""},
		{"from-file", ""},
		{"from-path", ""},
		{"history", ""},
		{"local", ""},
	}

	for _, f := range expectedFlags {
		flag := queryCmd.Flags().Lookup(f.name)
		if flag == nil {
			t.Errorf("expected flag --%s to be registered", f.name)
			continue
		}
		if flag.Shorthand != f.shorthand {
			t.Errorf("flag --%s: expected shorthand %q, got %q", f.name, f.shorthand, flag.Shorthand)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	for _, name := range []string{"stdout", "from-stdin", "from-file", "from-path", "history", "local"} {
		if runCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag --%s to be registered", name)
		}
	}
}

func TestQueryDaemon_NoDaemon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Daemon.SocketPath = filepath.Join(t.TempDir(), "absent.sock")

	_, ok := queryDaemon(cfg, "fire", 0)
	assert.False(t, ok, "a dead socket falls back to the local build")
}
