package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfriesel/flint/internal/config"
)

func TestHistoryFilePath(t *testing.T) {
	origFile := historyFile
	t.Cleanup(func() { historyFile = origFile })

	cfg := config.DefaultConfig()
	paths := config.DefaultPaths()

	historyFile = ""
	assert.Equal(t, paths.HistoryFile(), historyFilePath(cfg), "default location")

	cfg.History.Path = "/var/lib/flint/history"
	assert.Equal(t, "/var/lib/flint/history", historyFilePath(cfg), "config overrides default")

	historyFile = "/tmp/override"
	assert.Equal(t, "/tmp/override", historyFilePath(cfg), "flag overrides config")
}
