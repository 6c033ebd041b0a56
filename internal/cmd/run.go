package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfriesel/flint/internal/calc"
	"github.com/mfriesel/flint/internal/daemon"
	"github.com/mfriesel/flint/internal/engine"
)

var (
	runStdout  bool
	runStdin   bool
	runFiles   []string
	runPath    bool
	runHistory string
	runLocal   bool
)

var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Launch the best match for a query",
	Long: `Rank candidates against the query, record the winner in usage
history, and replace this process with the winning command via /bin/sh.

An arithmetic query is never executed: its result is printed instead.
When nothing matches a non-empty query, the query itself runs verbatim.
With --stdout the winning command line is printed without a trailing
newline instead of being executed, for frontends that substitute it into
an edit buffer.

Examples:
  flint run fire          # launch the best match for "fire"
  flint run               # launch the most used application
  flint run --stdout fire # print the command line it would run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runStdout, "stdout", false, "print the command instead of executing it")
	runCmd.Flags().BoolVar(&runStdin, "from-stdin", false, "read candidates from stdin instead of the default sources")
	runCmd.Flags().StringArrayVar(&runFiles, "from-file", nil, "read candidates from a file in \"Name = command\" format (repeatable)")
	runCmd.Flags().BoolVar(&runPath, "from-path", false, "scan only $PATH for candidates")
	runCmd.Flags().StringVar(&runHistory, "history", "", "history file override (re-enables recording with --from-*)")
	runCmd.Flags().BoolVar(&runLocal, "local", false, "build the index in-process even when a daemon is running")
}

// errNothingToRun reports a query that produced no launchable result,
// which only happens on an empty query over an empty index.
var errNothingToRun = errors.New("nothing to run")

func runRun(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	policy := sourcePolicy{
		fromStdin:   runStdin,
		fromFiles:   runFiles,
		fromPath:    runPath,
		historyPath: runHistory,
	}

	if policy.usesDaemon(runLocal) {
		client := daemon.NewClient(daemon.ClientConfig{SocketPath: cfg.Daemon.SocketPath})
		if res, err := client.Query(query, 1); err == nil {
			return launch(os.Stdout, res, func(identity string) {
				// Best-effort: losing one usage count beats failing the launch.
				_ = client.Record(identity)
			})
		}
		maybeSpawnDaemon(cfg)
	}

	logger := newLogger(cfg)
	eng, err := newLocalEngine(cfg, logger, policy)
	if err != nil {
		return err
	}
	defer eng.Close()

	gctx, cancel := context.WithTimeout(cmd.Context(), gatherTimeout)
	defer cancel()
	if err := eng.Refresh(gctx); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	return launch(os.Stdout, eng.Query(query, 1), func(identity string) {
		eng.Record(identity)
		// Exec replaces the process before deferred cleanup can run.
		if err := eng.Flush(); err != nil {
			logger.Warn("history flush failed", "error", err)
		}
	})
}

// launch resolves the winning result and either prints or executes it.
// record runs exactly once for an executable winner, before control is
// handed to the command.
func launch(w io.Writer, res engine.Results, record func(identity string)) error {
	if res.Expression != nil {
		display := calc.FormatValue(res.Expression.Value)
		if runStdout {
			fmt.Fprint(w, display)
			return nil
		}
		fmt.Fprintln(w, display)
		return nil
	}

	identity := ""
	switch {
	case len(res.Matches) > 0:
		identity = res.Matches[0].Item.Identity
	case res.Fallback != nil:
		identity = res.Fallback.Identity
	default:
		return errNothingToRun
	}

	record(identity)

	if runStdout {
		fmt.Fprint(w, identity)
		return nil
	}
	return execCommand(identity)
}

// execCommand replaces the current process with the command, run through
// the shell so identities keep their arguments and quoting.
func execCommand(identity string) error {
	err := syscall.Exec("/bin/sh", []string{"sh", "-c", identity}, os.Environ())
	// Exec only returns on failure.
	return fmt.Errorf("exec %q: %w", identity, err)
}
