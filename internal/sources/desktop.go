package sources

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mfriesel/flint/internal/catalog"
)

// fieldCodes are the desktop-entry placeholders stripped from Exec lines
// before the command is usable standalone.
var fieldCodes = []string{"%f", "%F", "%u", "%U", "%i", "%c", "%k"}

// Desktop enumerates freedesktop application entries from the XDG data
// directories.
type Desktop struct {
	// Dirs overrides the search directories; empty means the XDG set.
	Dirs []string
}

// Kind implements Source.
func (Desktop) Kind() catalog.Source {
	return catalog.SourceDesktop
}

// Candidates walks the application directories and parses every .desktop
// file. Entries marked Hidden are dropped. Entries marked NoDisplay are
// dropped unless their Type is Settings; kept ones still carry the
// NoDisplay flag. Duplicate display names keep the alphabetically first
// entry.
func (d Desktop) Candidates(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item

	for _, dir := range d.searchDirs() {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			if item, ok := parseDesktopEntry(string(content)); ok {
				items = append(items, item)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	deduped := items[:0]
	for i, item := range items {
		if i > 0 && items[i-1].Name == item.Name {
			continue
		}
		deduped = append(deduped, item)
	}
	return deduped, nil
}

// searchDirs resolves the application directories: an explicit override,
// or $XDG_DATA_HOME and $XDG_DATA_DIRS with their usual fallbacks.
func (d Desktop) searchDirs() []string {
	if len(d.Dirs) > 0 {
		return d.Dirs
	}

	var dirs []string
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range filepath.SplitList(dataDirs) {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

// parseDesktopEntry extracts a launchable item from desktop file content.
// Only the [Desktop Entry] section is read.
func parseDesktopEntry(content string) (catalog.Item, bool) {
	var name, exec, appType string
	var hidden, noDisplay bool
	inSection := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "[Desktop Entry]":
			inSection = true
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			inSection = false
			continue
		}
		if !inSection {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "Name":
			name = value
		case "Exec":
			exec = value
		case "Hidden":
			hidden = strings.EqualFold(value, "true")
		case "NoDisplay":
			noDisplay = strings.EqualFold(value, "true")
		case "Type":
			appType = value
		}
	}

	if hidden || name == "" || exec == "" {
		return catalog.Item{}, false
	}
	if noDisplay && appType != "Settings" {
		return catalog.Item{}, false
	}

	for _, code := range fieldCodes {
		exec = strings.ReplaceAll(exec, code, "")
	}
	exec = strings.TrimSpace(exec)
	if exec == "" {
		return catalog.Item{}, false
	}

	item := newItem(name, exec, catalog.SourceDesktop, 0)
	item.NoDisplay = noDisplay
	return item, true
}
