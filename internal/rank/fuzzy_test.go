package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyScore_Subsequence(t *testing.T) {
	t.Parallel()

	w := DefaultFuzzyWeights()

	tests := []struct {
		name  string
		query string
		label string
		match bool
	}{
		{"exact", "firefox", "Firefox", true},
		{"scattered subsequence", "ffx", "Firefox", true},
		{"case insensitive", "FIRE", "firefox", true},
		{"out of order", "xff", "Firefox", false},
		{"missing rune", "fz", "Firefox", false},
		{"query longer than label", "firefoxx", "Firefox", false},
		{"empty query", "", "anything", true},
		{"empty label", "a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := fuzzyScore(tt.query, tt.label, w)
			assert.Equal(t, tt.match, ok)
		})
	}
}

func TestFuzzyScore_EmptyQueryScoresZero(t *testing.T) {
	t.Parallel()

	score, ok := fuzzyScore("", "Firefox", DefaultFuzzyWeights())
	require.True(t, ok)
	assert.Zero(t, score)
}

func TestFuzzyScore_ConsecutiveBeatsScattered(t *testing.T) {
	t.Parallel()

	w := DefaultFuzzyWeights()

	contiguous, ok := fuzzyScore("ab", "abx", w)
	require.True(t, ok)
	scattered, ok := fuzzyScore("ab", "axb", w)
	require.True(t, ok)

	assert.Greater(t, contiguous, scattered)
}

func TestFuzzyScore_WordBoundaryBonus(t *testing.T) {
	t.Parallel()

	w := DefaultFuzzyWeights()

	atBoundary, ok := fuzzyScore("b", "a-b", w)
	require.True(t, ok)
	midWord, ok := fuzzyScore("b", "ab", w)
	require.True(t, ok)

	assert.Greater(t, atBoundary, midWord)
}

func TestFuzzyScore_ShorterLabelWins(t *testing.T) {
	t.Parallel()

	w := DefaultFuzzyWeights()

	short, ok := fuzzyScore("term", "term", w)
	require.True(t, ok)
	long, ok := fuzzyScore("term", "terminal", w)
	require.True(t, ok)

	assert.Greater(t, short, long)
}

func TestFuzzyScore_BoundaryRunes(t *testing.T) {
	t.Parallel()

	for _, sep := range []string{" ", "-", "_", ".", "/"} {
		sep := sep
		t.Run(sep, func(t *testing.T) {
			t.Parallel()
			w := DefaultFuzzyWeights()
			withSep, ok := fuzzyScore("s", "a"+sep+"s", w)
			require.True(t, ok)
			plain, ok := fuzzyScore("s", "aas", w)
			require.True(t, ok)
			assert.Greater(t, withSep, plain)
		})
	}
}
