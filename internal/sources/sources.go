// Package sources enumerates launcher candidates from the places
// applications live: desktop entries, $PATH, flatpak, snap, and caller
// supplied files or stdin.
package sources

import (
	"context"

	"github.com/mfriesel/flint/internal/catalog"
)

// Source produces raw candidates carrying its source tag. Candidates may
// walk the filesystem or run external commands; it is never called on the
// query path.
type Source interface {
	Kind() catalog.Source
	Candidates(ctx context.Context) ([]catalog.Item, error)
}
