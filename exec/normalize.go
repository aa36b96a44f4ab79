package exec

import (
	"github.com/lemmego/searchable/meta"
	"github.com/lemmego/searchable/search"
)

// normalizeSort implements the Sort & Pagination Normalizer (C10, spec
// §4.9): every primary-key component not already present (matched by
// attribute name) is appended ASC, in declared order, yielding a total
// ordering over the data so pagination across Phase 1 pages is stable.
func normalizeSort(root interface{}, orders []search.Order) []search.Order {
	present := make(map[string]bool, len(orders))
	for _, o := range orders {
		present[o.EntityField] = true
	}

	out := append([]search.Order(nil), orders...)
	for _, pk := range meta.PrimaryKey(root) {
		if present[pk] {
			continue
		}
		out = append(out, search.Order{EntityField: pk, Direction: search.Asc})
		present[pk] = true
	}
	return out
}

// normalizePage clamps page to >= 0 and size to [1, maxSize], defaulting
// size to search.DefaultSize when it is <= 0, per spec §4.9.
func normalizePage(page, size, maxSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = search.DefaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// isNonPrimaryKeySort reports whether orders names any attribute outside
// the root's primary key, which per spec §4.8 Phase 1 forces the ID
// projection to widen into a (pk, s1, s2, …) tuple with DISTINCT applied
// to the whole tuple rather than pk alone.
func isNonPrimaryKeySort(root interface{}, orders []search.Order) bool {
	pk := make(map[string]bool)
	for _, p := range meta.PrimaryKey(root) {
		pk[p] = true
	}
	for _, o := range orders {
		if !pk[o.EntityField] {
			return true
		}
	}
	return false
}
