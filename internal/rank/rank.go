// Package rank orders catalog items against live queries. Matching is
// ordered-subsequence fuzzy scoring; the final sort key blends match
// quality with each item's base score and its recorded usage count.
package rank

import (
	"fmt"
	"sort"

	"github.com/mfriesel/flint/internal/catalog"
)

// HistoryReader supplies usage counts to the ranking blend. A missing
// identity scores 0.
type HistoryReader interface {
	Score(identity string) int
}

// Weights blends the three ranking channels into one sort key.
type Weights struct {
	Fuzzy   float64 `yaml:"fuzzy"`
	Base    float64 `yaml:"base"`
	History float64 `yaml:"history"`
}

// DefaultWeights returns the stock blend: match quality, source prior and
// usage count contribute at equal scale.
func DefaultWeights() Weights {
	return Weights{Fuzzy: 1, Base: 1, History: 1}
}

// Match is one ranked result.
type Match struct {
	Item       catalog.Item
	FuzzyScore float64
	Combined   float64
}

// Config configures a Ranker.
type Config struct {
	Weights      Weights
	FuzzyWeights FuzzyWeights
	Limit        int // cap on returned matches, 0 means unlimited
}

// Ranker scores index items against queries. It holds no mutable state and
// is safe for concurrent use.
type Ranker struct {
	weights Weights
	fuzzy   FuzzyWeights
	limit   int
}

// New validates cfg and builds a Ranker. Negative blend weights are
// rejected: the combined score must stay monotonic in every channel.
func New(cfg Config) (*Ranker, error) {
	if cfg.Weights.Fuzzy < 0 || cfg.Weights.Base < 0 || cfg.Weights.History < 0 {
		return nil, fmt.Errorf("rank: blend weights must be non-negative, got %+v", cfg.Weights)
	}
	if cfg.Limit < 0 {
		cfg.Limit = 0
	}
	return &Ranker{
		weights: cfg.Weights,
		fuzzy:   cfg.FuzzyWeights,
		limit:   cfg.Limit,
	}, nil
}

// Rank scores every index item against query and returns matches ordered
// descending by combined score, ties broken ascending by identity. Items
// whose display name does not contain the query as an ordered subsequence
// do not appear at all. An empty query matches every item with fuzzy score
// zero, so ordering degenerates to base score plus usage. Rank performs no
// I/O and is invoked once per keystroke.
func (r *Ranker) Rank(query string, idx *catalog.Index, hist HistoryReader) []Match {
	items := idx.Items()
	matches := make([]Match, 0, len(items))

	for _, item := range items {
		score, ok := fuzzyScore(query, item.Name, r.fuzzy)
		if !ok {
			continue
		}
		combined := r.weights.Fuzzy*score + r.weights.Base*float64(item.BaseScore)
		if hist != nil {
			combined += r.weights.History * float64(hist.Score(item.Identity))
		}
		matches = append(matches, Match{Item: item, FuzzyScore: score, Combined: combined})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Combined != matches[j].Combined {
			return matches[i].Combined > matches[j].Combined
		}
		return matches[i].Item.Identity < matches[j].Item.Identity
	})

	if r.limit > 0 && len(matches) > r.limit {
		matches = matches[:r.limit]
	}
	return matches
}
