package sources

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mfriesel/flint/internal/catalog"
)

// Path enumerates executables on $PATH.
type Path struct {
	// ShowHidden keeps dotfile executables in the results.
	ShowHidden bool
}

// Kind implements Source.
func (Path) Kind() catalog.Source {
	return catalog.SourcePath
}

// Candidates lists every regular file with an execute bit in the $PATH
// directories. The first directory to supply a name wins, matching shell
// lookup order. Unreadable directories are skipped.
func (p Path) Candidates(ctx context.Context) ([]catalog.Item, error) {
	seen := make(map[string]bool)
	var items []catalog.Item

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !p.ShowHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if seen[name] {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
				continue
			}
			seen[name] = true
			items = append(items, catalog.Item{
				Identity: name,
				Name:     name,
				Exec:     []string{name},
				Source:   catalog.SourcePath,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
