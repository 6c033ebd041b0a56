package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "history"), nil)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if got := s.Score("anything"); got != 0 {
		t.Errorf("Score on empty store = %d, want 0", got)
	}
}

func TestLoad_ParsesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	content := `firefox = 12
alacritty=3
  mpv   =   1

not a history line
flatpak run org.gimp.GIMP = 7
broken = tweleve
negative = -2
= 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		identity string
		want     int
	}{
		{"firefox", 12},
		{"alacritty", 3},
		{"mpv", 1},
		{"flatpak run org.gimp.GIMP", 7},
		{"broken", 0},
		{"negative", 0},
		{"not a history line", 0},
	}
	for _, tt := range tests {
		if got := s.Score(tt.identity); got != tt.want {
			t.Errorf("Score(%q) = %d, want %d", tt.identity, got, tt.want)
		}
	}
}

func TestLoad_IdentityContainingEquals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	line := `emacs --eval=(server-start) = 4` + "\n"
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Score("emacs --eval=(server-start)"); got != 4 {
		t.Errorf("Score = %d, want 4", got)
	}
}

func TestRecord_Increments(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "history"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.Record("firefox")
	s.Record("firefox")
	s.Record("mpv")

	if got := s.Score("firefox"); got != 2 {
		t.Errorf("Score(firefox) = %d, want 2", got)
	}
	if got := s.Score("mpv"); got != 1 {
		t.Errorf("Score(mpv) = %d, want 1", got)
	}
}

func TestRecord_IgnoresEmptyIdentity(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "history"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Record("")
	if got := len(s.Entries()); got != 0 {
		t.Errorf("Entries after empty Record = %d entries, want 0", got)
	}
}

func TestFlush_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history")
	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.Record("firefox")
	s.Record("firefox")
	s.Record("emacs --eval=(server-start)")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Score("firefox"); got != 2 {
		t.Errorf("reloaded Score(firefox) = %d, want 2", got)
	}
	if got := reloaded.Score("emacs --eval=(server-start)"); got != 1 {
		t.Errorf("reloaded Score(emacs) = %d, want 1", got)
	}
}

func TestFlush_SortedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.Record("zathura")
	s.Record("alacritty")
	s.Record("mpv")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read flushed file: %v", err)
	}
	want := "alacritty = 1\nmpv = 1\nzathura = 1\n"
	if string(data) != want {
		t.Errorf("flushed content = %q, want %q", data, want)
	}
}

func TestFlush_MemoryOnlyStore(t *testing.T) {
	s := New("", nil)
	s.Record("firefox")

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush on pathless store: %v", err)
	}
	if got := s.Score("firefox"); got != 1 {
		t.Errorf("Score = %d, want 1", got)
	}
}

func TestFlush_NoopWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush on clean store: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("clean Flush created %s", path)
	}
}

func TestFlush_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Record("firefox")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".history-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestReset(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "history"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.Record("firefox")
	s.Reset()

	if got := s.Score("firefox"); got != 0 {
		t.Errorf("Score after Reset = %d, want 0", got)
	}
}

func TestEntries_Order(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "history"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.Record("mpv")
	s.Record("firefox")
	s.Record("firefox")
	s.Record("alacritty")

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(entries))
	}
	if entries[0].Identity != "firefox" || entries[0].Hits != 2 {
		t.Errorf("entries[0] = %+v, want firefox/2", entries[0])
	}
	// ties ordered by identity
	if entries[1].Identity != "alacritty" || entries[2].Identity != "mpv" {
		t.Errorf("tie order = %s, %s; want alacritty, mpv", entries[1].Identity, entries[2].Identity)
	}
}
