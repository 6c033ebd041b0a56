// Package catalog defines the selectable items a launcher ranks and the
// merged, deduplicated index they live in.
package catalog

// Source identifies which enumerator produced an item.
type Source string

const (
	SourcePath     Source = "path"
	SourceDesktop  Source = "desktop"
	SourceFlatpak  Source = "flatpak"
	SourceSnap     Source = "snap"
	SourceExternal Source = "external"
)

// Item is one selectable entry. Identity is the stable deduplication key,
// the resolved command line; Exec is its argv split. Items are treated as
// immutable once constructed.
type Item struct {
	Identity  string
	Name      string
	Exec      []string
	Source    Source
	BaseScore int
	NoDisplay bool
}
