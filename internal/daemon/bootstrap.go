package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfriesel/flint/internal/config"
	"github.com/mfriesel/flint/internal/engine"
	"github.com/mfriesel/flint/internal/history"
	"github.com/mfriesel/flint/internal/rank"
	"github.com/mfriesel/flint/internal/sources"
	"github.com/mfriesel/flint/internal/watch"
)

// RunForeground wires the full daemon stack from cfg and blocks until
// shutdown: engine built from the configured sources, initial index
// build, optional directory watcher, then Run. Both flintd and
// "flint daemon start" enter here.
func RunForeground(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	eng, err := buildEngine(cfg, paths, logger)
	if err != nil {
		return err
	}

	// Serve something immediately; the refresh op and the watcher repair
	// a partial first build.
	bctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	if err := eng.Refresh(bctx); err != nil {
		logger.Warn("initial index build incomplete", "error", err)
	}
	cancel()
	logger.Info("index built", "items", eng.Index().Len())

	wctx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	if cfg.Daemon.Watch {
		startWatcher(wctx, cfg, eng, logger)
	}

	srvCfg := &ServerConfig{
		Engine:          eng,
		Transport:       NewUnixTransport(cfg.Daemon.SocketPath),
		PIDFile:         paths.PIDFile(),
		Logger:          logger,
		IdleTimeout:     time.Duration(cfg.Daemon.IdleTimeoutMins) * time.Minute,
		FlushInterval:   time.Duration(cfg.History.FlushIntervalSecs) * time.Second,
		RefreshInterval: time.Duration(cfg.Daemon.RefreshIntervalMins) * time.Minute,
	}
	return Run(ctx, paths, srvCfg)
}

// buildEngine assembles the daemon engine: configured sources, the
// persistent history store, and a ranker from the configured weights.
func buildEngine(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*engine.Engine, error) {
	histPath := cfg.History.Path
	if histPath == "" {
		histPath = paths.HistoryFile()
	}
	hist, err := history.Load(histPath, logger)
	if err != nil {
		// An unreadable default file degrades to an empty store; a path
		// the user named explicitly does not.
		if cfg.History.Path != "" {
			return nil, fmt.Errorf("load history: %w", err)
		}
		logger.Warn("history unreadable, starting empty", "path", histPath, "error", err)
		hist = history.New(histPath, logger)
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
		Sources: sources.FromConfig(cfg),
		History: hist,
		Ranker:  ranker,
		Logger:  logger,
	}, engine.Config{RecordUsage: true})
}

// startWatcher begins watching the application directories, triggering a
// debounced index rebuild on changes. Watch failures degrade to the
// periodic refresh; they never stop the daemon.
func startWatcher(ctx context.Context, cfg *config.Config, eng *engine.Engine, logger *slog.Logger) {
	dirs := sources.WatchDirs(cfg)
	if len(dirs) == 0 {
		logger.Debug("no directories to watch")
		return
	}

	w, err := watch.New(watch.Config{
		Dirs:   dirs,
		Logger: logger,
		OnChange: func(ctx context.Context) error {
			rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()
			return eng.Refresh(rctx)
		},
	})
	if err != nil {
		logger.Warn("directory watcher unavailable", "error", err)
		return
	}
	if w.Watched() == 0 {
		logger.Debug("no watchable directories found")
		w.Close()
		return
	}

	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Warn("directory watcher stopped", "error", err)
		}
	}()
}
