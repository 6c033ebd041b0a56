package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/engine"
	"github.com/mfriesel/flint/internal/history"
	"github.com/mfriesel/flint/internal/rank"
	"github.com/mfriesel/flint/internal/sources"
)

// gatherTimeout bounds a one-shot index build. The scanners shell out to
// flatpak and snap, which can hang on a wedged package daemon.
const gatherTimeout = 15 * time.Second

// sourcePolicy captures the --from-* and --history flag state shared by
// query and run. Any --from flag switches to exactly the requested
// sources and turns off usage recording unless a history path is named
// explicitly, so ad-hoc candidate lists neither read nor write the
// launcher's learned counts.
type sourcePolicy struct {
	fromStdin   bool
	fromFiles   []string
	fromPath    bool
	historyPath string
}

// external reports whether any --from flag replaced the default sources.
func (p sourcePolicy) external() bool {
	return p.fromStdin || len(p.fromFiles) > 0 || p.fromPath
}

// usesDaemon reports whether the daemon may serve this invocation. Ad-hoc
// sources are always built locally, and a history override must bypass
// the daemon too: the daemon ranks and records against its own store.
func (p sourcePolicy) usesDaemon(local bool) bool {
	return !local && !p.external() && p.historyPath == ""
}

// recordUsage reports whether selections feed the history store.
func (p sourcePolicy) recordUsage() bool {
	return !p.external() || p.historyPath != ""
}

// buildSources resolves the candidate sources in priority order. In
// external mode: explicit file lists, then stdin, then the $PATH scan.
// Earlier sources win identity collisions unless a later one carries a
// higher base score.
func (p sourcePolicy) buildSources(cfg *config.Config, logger *slog.Logger) []sources.Source {
	if !p.external() {
		return sources.FromConfig(cfg)
	}

	var srcs []sources.Source
	if len(p.fromFiles) > 0 {
		srcs = append(srcs, sources.FileList{Paths: p.fromFiles, Logger: logger})
	}
	if p.fromStdin {
		srcs = append(srcs, sources.Stdin{Logger: logger})
	}
	if p.fromPath {
		srcs = append(srcs, sources.Path{ShowHidden: cfg.Sources.ShowHiddenFiles})
	}
	return srcs
}

// resolveHistoryPath picks the history file: the --history flag, the
// configured path, then the default data location. External mode without
// an explicit override gets no file at all.
func (p sourcePolicy) resolveHistoryPath(cfg *config.Config, paths *config.Paths) string {
	if p.historyPath != "" {
		return p.historyPath
	}
	if p.external() {
		return ""
	}
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return paths.HistoryFile()
}

// newLocalEngine wires an engine from config and flags for a single
// in-process build. The caller still owns Refresh and Close.
func newLocalEngine(cfg *config.Config, logger *slog.Logger, policy sourcePolicy) (*engine.Engine, error) {
	paths := config.DefaultPaths()

	var hist *history.Store
	if path := policy.resolveHistoryPath(cfg, paths); path == "" {
		hist = history.New("", logger)
	} else {
		var err error
		hist, err = history.Load(path, logger)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	}

	ranker, err := rank.New(rank.Config{
		Weights:      cfg.Ranking.Weights,
		FuzzyWeights: cfg.Ranking.FuzzyWeights,
		Limit:        cfg.Ranking.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	return engine.New(engine.Dependencies{
		Sources: policy.buildSources(cfg, logger),
		History: hist,
		Ranker:  ranker,
		Logger:  logger,
	}, engine.Config{RecordUsage: policy.recordUsage()})
}
