package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/daemon"
	"github.com/mfriesel/flint/internal/engine"
)

var (
	queryLimit   int
	queryFormat  string
	queryStdin   bool
	queryFiles   []string
	queryPath    bool
	queryHistory string
	queryLocal   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Rank launcher candidates against a query",
	Long: `Rank launcher candidates against a query and print the results.

With a daemon running the warm index answers immediately; otherwise the
index is built in-process for this one invocation. Arithmetic queries
evaluate inline and print their result first.

Examples:
  flint query fire              # rank everything against "fire"
  flint query                   # empty query: most used first
  flint query "22*7"            # = 154
  flint query -n 5 --format=json term
  ls ~/bin | sed 's/.*/& = &/' | flint query --from-stdin zsh`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of matches to print (0 = no extra cap)")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "output format: text or json")
	queryCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
	queryCmd.Flags().BoolVar(&queryStdin, "from-stdin", false, "read candidates from stdin instead of the default sources")
	queryCmd.Flags().StringArrayVar(&queryFiles, "from-file", nil, "read candidates from a file in \"Name = command\" format (repeatable)")
	queryCmd.Flags().BoolVar(&queryPath, "from-path", false, "scan only $PATH for candidates")
	queryCmd.Flags().StringVar(&queryHistory, "history", "", "history file override (re-enables recording with --from-*)")
	queryCmd.Flags().BoolVar(&queryLocal, "local", false, "build the index in-process even when a daemon is running")
}

func runQuery(cmd *cobra.Command, args []string) error {
	applyColorMode()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	policy := sourcePolicy{
		fromStdin:   queryStdin,
		fromFiles:   queryFiles,
		fromPath:    queryPath,
		historyPath: queryHistory,
	}

	// Daemon-first: ad-hoc sources and history overrides build locally.
	if policy.usesDaemon(queryLocal) {
		if res, ok := queryDaemon(cfg, query, queryLimit); ok {
			return renderResults(os.Stdout, query, res, queryFormat)
		}
		maybeSpawnDaemon(cfg)
	}

	res, err := localQuery(cmd.Context(), cfg, policy, query, queryLimit)
	if err != nil {
		return err
	}
	return renderResults(os.Stdout, query, res, queryFormat)
}

// queryDaemon tries the running daemon. Returns false when no daemon
// answers within the dial timeout; the caller builds locally.
func queryDaemon(cfg *config.Config, query string, limit int) (engine.Results, bool) {
	client := daemon.NewClient(daemon.ClientConfig{SocketPath: cfg.Daemon.SocketPath})
	res, err := client.Query(query, limit)
	if err != nil {
		return engine.Results{}, false // daemon not available
	}
	return res, true
}

// localQuery builds the index in-process and ranks once.
func localQuery(ctx context.Context, cfg *config.Config, policy sourcePolicy, query string, limit int) (engine.Results, error) {
	logger := newLogger(cfg)
	eng, err := newLocalEngine(cfg, logger, policy)
	if err != nil {
		return engine.Results{}, err
	}
	defer eng.Close()

	gctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()
	if err := eng.Refresh(gctx); err != nil {
		return engine.Results{}, fmt.Errorf("build index: %w", err)
	}
	return eng.Query(query, limit), nil
}
