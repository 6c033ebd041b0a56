package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/daemon"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the running daemon's index",
	Long: `Ask the running daemon to re-gather candidates and rebuild its
index. Queries keep answering from the old index until the swap.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := daemon.NewClient(daemon.ClientConfig{
			SocketPath: cfg.Daemon.SocketPath,
			// Rebuilding shells out to the package managers; allow more
			// than the usual round trip.
			RequestTimeout: 45 * time.Second,
		})
		if err := client.Refresh(); err != nil {
			return fmt.Errorf("refresh failed (is the daemon running?): %w", err)
		}
		fmt.Println("Index rebuilt.")
		return nil
	},
}
