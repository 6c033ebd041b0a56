package cmd

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/daemon"
	"github.com/mfriesel/flint/internal/history"
)

// identityColumnMax caps the command column in history listings.
const identityColumnMax = 64

var historyFile string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage launch history",
	Long: `Inspect and manage the launch counts that bias ranking.

The history file is plain text, one "command = hits" per line, and can
be edited by hand while the daemon is stopped.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recorded launch counts, most used first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all recorded launch counts",
	Args:  cobra.NoArgs,
	RunE:  runHistoryReset,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFile, "history", "", "history file override")
	historyCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyResetCmd)
}

// historyFilePath resolves the history file: flag, config, default.
func historyFilePath(cfg *config.Config) string {
	if historyFile != "" {
		return historyFile
	}
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return config.DefaultPaths().HistoryFile()
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	applyColorMode()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Load(historyFilePath(cfg), newLogger(cfg))
	if err != nil {
		return err
	}

	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Println("No launches recorded yet.")
		return nil
	}

	width := runewidth.StringWidth("COMMAND")
	for _, e := range entries {
		if w := runewidth.StringWidth(e.Identity); w > width {
			width = w
		}
	}
	if width > identityColumnMax {
		width = identityColumnMax
	}

	fmt.Printf("%s  %s\n", styleHeader.Render(runewidth.FillRight("COMMAND", width)), styleHeader.Render("HITS"))
	for _, e := range entries {
		identity := runewidth.Truncate(e.Identity, identityColumnMax, "…")
		fmt.Printf("%s  %4d\n", runewidth.FillRight(identity, width), e.Hits)
	}
	fmt.Printf("\n%s\n", styleDim.Render(fmt.Sprintf("%d command(s), %s", len(entries), store.Path())))

	return nil
}

func runHistoryReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Load(historyFilePath(cfg), newLogger(cfg))
	if err != nil {
		return err
	}

	store.Reset()
	if err := store.Flush(); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	fmt.Println("History cleared.")

	// A running daemon still holds the old counts in memory and would
	// write them back on its next flush.
	if daemon.IsRunning(nil) {
		fmt.Println("Note: the daemon is running; restart it to drop its in-memory counts.")
	}
	return nil
}
