package rank

import (
	"strings"
	"unicode"
)

// FuzzyWeights tunes the subsequence scorer. Bonuses are additive per
// matched rune; LengthPenalty is subtracted per label rune so short labels
// outrank long ones at equal match quality.
type FuzzyWeights struct {
	CharMatch     float64 `yaml:"char_match"`
	Consecutive   float64 `yaml:"consecutive"`
	WordBoundary  float64 `yaml:"word_boundary"`
	LengthPenalty float64 `yaml:"length_penalty"`
}

// DefaultFuzzyWeights returns the stock scoring weights.
func DefaultFuzzyWeights() FuzzyWeights {
	return FuzzyWeights{
		CharMatch:     5,
		Consecutive:   10,
		WordBoundary:  8,
		LengthPenalty: 0.5,
	}
}

// fuzzyScore matches query as an ordered, not necessarily contiguous
// subsequence of label, case-insensitively. The second return is false when
// some query rune finds no match; such labels carry no score at all and are
// excluded from results. An empty query matches everything with score 0.
func fuzzyScore(query, label string, w FuzzyWeights) (float64, bool) {
	if query == "" {
		return 0, true
	}

	qr := []rune(strings.ToLower(query))
	lr := []rune(strings.ToLower(label))

	var score float64
	qi := 0
	prev := -2
	for li := 0; li < len(lr) && qi < len(qr); li++ {
		if lr[li] != qr[qi] {
			continue
		}
		score += w.CharMatch
		if li == prev+1 {
			score += w.Consecutive
		}
		if li == 0 || isBoundary(lr[li-1]) {
			score += w.WordBoundary
		}
		prev = li
		qi++
	}
	if qi < len(qr) {
		return 0, false
	}
	return score - w.LengthPenalty*float64(len(lr)), true
}

// isBoundary reports whether a rune separates words inside a label.
func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/'
}
