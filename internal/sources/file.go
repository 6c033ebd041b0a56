package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mfriesel/flint/internal/catalog"
)

// FileList reads candidates from files in the "Name = command" line
// format.
type FileList struct {
	Paths  []string
	Logger *slog.Logger
}

// Kind implements Source.
func (FileList) Kind() catalog.Source {
	return catalog.SourceExternal
}

// Candidates parses every configured file in order. The files were named
// explicitly by the caller, so an unreadable one is an error rather than
// an empty contribution.
func (f FileList) Candidates(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	for _, path := range f.Paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open candidate file: %w", err)
		}
		parsed, err := parseList(file, catalog.SourceExternal, f.Logger)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read candidate file %s: %w", path, err)
		}
		items = append(items, parsed...)
	}
	return items, nil
}

// Stdin reads candidates from standard input in the "Name = command" line
// format.
type Stdin struct {
	Reader io.Reader
	Logger *slog.Logger
}

// Kind implements Source.
func (Stdin) Kind() catalog.Source {
	return catalog.SourceExternal
}

// Candidates drains the reader. A nil Reader means os.Stdin.
func (s Stdin) Candidates(ctx context.Context) ([]catalog.Item, error) {
	r := s.Reader
	if r == nil {
		r = os.Stdin
	}
	return parseList(r, catalog.SourceExternal, s.Logger)
}
