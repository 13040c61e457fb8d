// Package listview implements the collection view used by every admin list
// screen: free-text and facet filtering, single-key sorting with per-key
// default directions, and page slicing. The engine operates on the records of
// the current server page only; it does not promise a global order across
// pages.
package listview

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortKey describes one sortable column: a comparator and the direction the
// column starts in when freshly selected (dates descend, names ascend).
type SortKey[T any] struct {
	Compare func(a, b T) int
	Default Direction
}

// View binds a record type to its searchable fields and sortable keys.
type View[T any] struct {
	fields func(T) []string
	keys   map[string]SortKey[T]
}

// New constructs a View. fields extracts the strings matched by free-text
// search.
func New[T any](fields func(T) []string, keys map[string]SortKey[T]) *View[T] {
	return &View[T]{fields: fields, keys: keys}
}

// Filter returns the records whose searchable fields contain the query
// (case-insensitive substring) and that satisfy every facet predicate. An
// empty query matches everything.
func (v *View[T]) Filter(records []T, rawQuery string, facets ...func(T) bool) []T {
	needle := strings.ToLower(strings.TrimSpace(rawQuery))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if !v.matchesQuery(rec, needle) {
			continue
		}
		ok := true
		for _, facet := range facets {
			if !facet(rec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func (v *View[T]) matchesQuery(rec T, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range v.fields(rec) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Sort orders records by the named key; ties keep their incoming order
// (stable sort). An unknown key leaves the slice untouched.
func (v *View[T]) Sort(records []T, key string, dir Direction) []T {
	sk, ok := v.keys[key]
	if !ok {
		return records
	}
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		c := sk.Compare(out[i], out[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Toggle resolves the next sort state after the user selects a key: selecting
// the active key flips direction, selecting a new key resets to that key's
// default direction.
func (v *View[T]) Toggle(activeKey string, activeDir Direction, nextKey string) (string, Direction) {
	if nextKey == activeKey {
		return activeKey, activeDir.Flip()
	}
	if sk, ok := v.keys[nextKey]; ok {
		return nextKey, sk.Default
	}
	return activeKey, activeDir
}

// Page slices the records for a 1-based page index and fixed page size.
func Page[T any](records []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(records) {
		return []T{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// baseCollator compares strings with base sensitivity: case and diacritics
// are ignored, matching localeCompare(…, {sensitivity: "base"}). A Collator
// is not safe for concurrent use, hence the mutex.
var (
	collatorMu   sync.Mutex
	baseCollator = collate.New(language.Und, collate.Loose)
)

// CompareStrings is the string comparator for sort keys.
func CompareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return baseCollator.CompareString(a, b)
}
