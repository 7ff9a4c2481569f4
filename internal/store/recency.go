package store

import (
	"encoding/json"
	"sort"
)

// CreatedAtAttr is the attribute items are ordered by.
const CreatedAtAttr = "createdAt"

// Number converts a numeric attribute value into a float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// CreatedAt returns the item's createdAt value, or 0 when absent or not numeric.
func CreatedAt(item Item) float64 {
	f, _ := Number(item[CreatedAtAttr])
	return f
}

// NewestFirst returns a copy of items stably sorted by createdAt descending
// and truncated to limit entries. A limit <= 0 keeps everything.
func NewestFirst(items []Item, limit int) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CreatedAt(sorted[i]) > CreatedAt(sorted[j])
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// OldestFirst returns a copy of items stably sorted by createdAt ascending.
func OldestFirst(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CreatedAt(sorted[i]) < CreatedAt(sorted[j])
	})
	return sorted
}
