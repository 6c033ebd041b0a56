package catalog

import "sort"

// Index is the merged universe of selectable items. It is immutable after
// Build; a refresh builds a new Index and swaps it in whole, so no two
// readers ever observe a partially merged view.
type Index struct {
	items []Item
	byID  map[string]int
}

// Build merges raw candidate lists into a deduplicated index. Lists are
// consumed in the order given. When two candidates share an Identity the
// earlier one is kept unless the later one carries a strictly higher
// BaseScore, in which case the later candidate replaces it outright,
// display name included. Candidates with an empty Identity are dropped.
func Build(lists ...[]Item) *Index {
	byID := make(map[string]int)
	var items []Item

	for _, list := range lists {
		for _, item := range list {
			if item.Identity == "" {
				continue
			}
			at, seen := byID[item.Identity]
			if !seen {
				byID[item.Identity] = len(items)
				items = append(items, item)
				continue
			}
			if item.BaseScore > items[at].BaseScore {
				items[at] = item
			}
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Identity < items[j].Identity
	})
	for i, item := range items {
		byID[item.Identity] = i
	}

	return &Index{items: items, byID: byID}
}

// Items returns the indexed items sorted by Identity. The slice is shared;
// callers must not mutate it.
func (x *Index) Items() []Item {
	return x.items
}

// Lookup returns the item with the given identity.
func (x *Index) Lookup(identity string) (Item, bool) {
	at, ok := x.byID[identity]
	if !ok {
		return Item{}, false
	}
	return x.items[at], true
}

// Len reports how many distinct items the index holds.
func (x *Index) Len() int {
	return len(x.items)
}
