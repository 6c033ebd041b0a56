package sources

import (
	"context"
	"strings"

	"github.com/mfriesel/flint/internal/catalog"
)

// Snap enumerates installed snap packages.
type Snap struct {
	output commandOutput
}

// Kind implements Source.
func (Snap) Kind() catalog.Source {
	return catalog.SourceSnap
}

// Candidates lists installed snaps by name; snap exposes launchers on
// $PATH under the bare package name. The core/base snaps and snapd itself
// are not launchable and are skipped, as is the header line. A missing
// snap binary contributes zero candidates.
func (s Snap) Candidates(ctx context.Context) ([]catalog.Item, error) {
	output := s.output
	if output == nil {
		output = runCommand
	}

	out, err := output(ctx, "snap", "list")
	if err != nil {
		return nil, nil
	}

	var items []catalog.Item
	lines := strings.Split(string(out), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if strings.HasPrefix(name, "core") || name == "snapd" {
			continue
		}
		items = append(items, catalog.Item{
			Identity: name,
			Name:     name,
			Exec:     []string{name},
			Source:   catalog.SourceSnap,
		})
	}
	return items, nil
}
