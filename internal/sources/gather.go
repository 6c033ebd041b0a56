package sources

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/config"
)

// FromConfig builds the default source set in priority order. Desktop
// entries come first so their display names and base scores win identity
// collisions against the bare $PATH scan.
func FromConfig(cfg *config.Config) []Source {
	var srcs []Source
	if cfg.Sources.Desktop {
		srcs = append(srcs, Desktop{})
	}
	if cfg.Sources.Path {
		srcs = append(srcs, Path{ShowHidden: cfg.Sources.ShowHiddenFiles})
	}
	if cfg.Sources.Flatpak {
		srcs = append(srcs, Flatpak{})
	}
	if cfg.Sources.Snap {
		srcs = append(srcs, Snap{})
	}
	return srcs
}

// WatchDirs lists the directories whose changes invalidate the catalog:
// the desktop entry directories, which flatpak and snap also export
// into. Empty when the desktop source is disabled.
func WatchDirs(cfg *config.Config) []string {
	if !cfg.Sources.Desktop {
		return nil
	}
	return Desktop{}.searchDirs()
}

// Gather runs every source concurrently and returns their candidate lists
// in argument order, which downstream merging treats as priority order. A
// failing source contributes an empty list and a warning; other sources
// are unaffected.
func Gather(ctx context.Context, logger *slog.Logger, srcs ...Source) [][]catalog.Item {
	if logger == nil {
		logger = slog.Default()
	}

	lists := make([][]catalog.Item, len(srcs))
	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			items, err := src.Candidates(ctx)
			if err != nil {
				logger.Warn("candidate source failed",
					"source", src.Kind(),
					"error", err)
				return nil
			}
			lists[i] = items
			return nil
		})
	}
	_ = g.Wait()
	return lists
}
