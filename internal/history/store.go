// Package history persists per-item usage counts that bias ranking toward
// often-used applications.
//
// The store is a plain text file, one "identity = hits" per line, so it
// diffs cleanly and survives hand edits: unparseable lines are skipped on
// load, and flushes replace the file atomically.
package history

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Entry is one identity with its recorded usage count.
type Entry struct {
	Identity string
	Hits     int
}

// Store maps item identities to usage counts. Safe for concurrent use:
// daemon connections record selections while queries read scores.
type Store struct {
	mu     sync.Mutex
	path   string
	hits   map[string]int
	dirty  bool
	logger *slog.Logger
}

// New returns an empty store that flushes to path. Load is the usual
// entry point; New is for callers that want to start from nothing, such
// as ad-hoc runs that must not inherit recorded counts. An empty path
// keeps counts in memory only.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, hits: make(map[string]int), logger: logger}
}

// Load reads the store at path. A missing file yields an empty store; any
// other open or read error is returned. Blank and malformed lines are
// skipped, never fatal.
func Load(path string, logger *slog.Logger) (*Store, error) {
	s := New(path, logger)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		identity, hits, ok := parseLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				s.logger.Debug("skipping malformed history line", "path", path, "line", lineno)
			}
			continue
		}
		s.hits[identity] = hits
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return s, nil
}

// parseLine splits "identity = hits". The delimiter is the last '=' on the
// line, so identities containing '=' round-trip; the right side must parse
// as a non-negative integer. Whitespace around either side is
// insignificant.
func parseLine(line string) (string, int, bool) {
	at := strings.LastIndex(line, "=")
	if at < 0 {
		return "", 0, false
	}
	identity := strings.TrimSpace(line[:at])
	count := strings.TrimSpace(line[at+1:])
	if identity == "" || count == "" {
		return "", 0, false
	}
	hits, err := strconv.Atoi(count)
	if err != nil || hits < 0 {
		return "", 0, false
	}
	return identity, hits, true
}

// Record increments the usage count for identity, creating it at 1.
func (s *Store) Record(identity string) {
	if identity == "" {
		return
	}
	s.mu.Lock()
	s.hits[identity]++
	s.dirty = true
	s.mu.Unlock()
}

// Score returns the recorded usage count, 0 when absent.
func (s *Store) Score(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[identity]
}

// Reset drops every recorded count.
func (s *Store) Reset() {
	s.mu.Lock()
	s.hits = make(map[string]int)
	s.dirty = true
	s.mu.Unlock()
}

// Entries returns a snapshot sorted by hits descending, ties broken by
// identity.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.hits))
	for identity, hits := range s.hits {
		entries = append(entries, Entry{Identity: identity, Hits: hits})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hits != entries[j].Hits {
			return entries[i].Hits > entries[j].Hits
		}
		return entries[i].Identity < entries[j].Identity
	})
	return entries
}

// Path returns the file the store flushes to.
func (s *Store) Path() string {
	return s.path
}

// Flush writes the whole store to its path, writing a temp file in the
// destination directory and renaming it into place so a crash mid-write
// never truncates a readable file. Flush is a no-op when nothing changed
// since the last flush, or when the store has no path.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.path == "" {
		return nil
	}

	lines := make([]string, 0, len(s.hits))
	for identity, hits := range s.hits {
		lines = append(lines, fmt.Sprintf("%s = %d", identity, hits))
	}
	sort.Strings(lines)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			tmp.Close()
			return fmt.Errorf("write history: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	s.dirty = false
	return nil
}
