package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/config"
)

type stubSource struct {
	kind  catalog.Source
	items []catalog.Item
	err   error
}

func (s stubSource) Kind() catalog.Source { return s.kind }

func (s stubSource) Candidates(context.Context) ([]catalog.Item, error) {
	return s.items, s.err
}

func TestGather_PreservesArgumentOrder(t *testing.T) {
	t.Parallel()

	lists := Gather(context.Background(), nil,
		stubSource{kind: catalog.SourceExternal, items: []catalog.Item{{Identity: "a"}}},
		stubSource{kind: catalog.SourcePath, items: []catalog.Item{{Identity: "b"}}},
	)

	require.Len(t, lists, 2)
	assert.Equal(t, "a", lists[0][0].Identity)
	assert.Equal(t, "b", lists[1][0].Identity)
}

func TestGather_FailingSourceIsIsolated(t *testing.T) {
	t.Parallel()

	lists := Gather(context.Background(), nil,
		stubSource{kind: catalog.SourceExternal, items: []catalog.Item{{Identity: "a"}}},
		stubSource{kind: catalog.SourceFlatpak, err: errors.New("broken")},
		stubSource{kind: catalog.SourcePath, items: []catalog.Item{{Identity: "c"}}},
	)

	require.Len(t, lists, 3)
	assert.Len(t, lists[0], 1)
	assert.Empty(t, lists[1])
	assert.Len(t, lists[2], 1)
}

func TestFromConfig_Order(t *testing.T) {
	t.Parallel()

	srcs := FromConfig(config.DefaultConfig())
	require.Len(t, srcs, 4)
	assert.Equal(t, catalog.SourceDesktop, srcs[0].Kind(), "desktop entries win identity collisions")
	assert.Equal(t, catalog.SourcePath, srcs[1].Kind())
	assert.Equal(t, catalog.SourceFlatpak, srcs[2].Kind())
	assert.Equal(t, catalog.SourceSnap, srcs[3].Kind())
}

func TestFromConfig_DisabledSources(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Sources.Desktop = false
	cfg.Sources.Flatpak = false
	cfg.Sources.Snap = false
	cfg.Sources.ShowHiddenFiles = true

	srcs := FromConfig(cfg)
	require.Len(t, srcs, 1)
	path, ok := srcs[0].(Path)
	require.True(t, ok)
	assert.True(t, path.ShowHidden)
}

func TestWatchDirs(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.NotEmpty(t, WatchDirs(cfg))

	cfg.Sources.Desktop = false
	assert.Empty(t, WatchDirs(cfg))
}

func TestFileList_Candidates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apps.list")
	require.NoError(t, os.WriteFile(path, []byte("Browser = firefox\n"), 0644))

	items, err := FileList{Paths: []string{path}}.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Browser", items[0].Name)
}

func TestFileList_MissingFileErrors(t *testing.T) {
	t.Parallel()

	_, err := FileList{Paths: []string{filepath.Join(t.TempDir(), "absent")}}.Candidates(context.Background())
	require.Error(t, err)
}

func TestStdin_Candidates(t *testing.T) {
	t.Parallel()

	items, err := Stdin{Reader: strings.NewReader("%base_score = 4\nEditor = vim\n")}.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].BaseScore)
}
