package finddups

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// pathEntry is a single member of a file set
type pathEntry struct {
	path string
}

// pathSet is an ordered, duplicate-free set of paths. The skiplist context
// records the input path that first contributed each entry.
type pathSet struct {
	skiplist *zcsl.ZeroCopySkiplist[pathEntry, string, string]
}

// newPathSet creates an empty path set ordered by byte-wise string comparison
func newPathSet(maxLevels int) *pathSet {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(entry *pathEntry) string {
		return entry.path
	}

	getItemSize := func(entry *pathEntry) int {
		return len(entry.path)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &pathSet{
		skiplist: zcsl.MakeZeroCopySkiplist[pathEntry, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Add inserts path with the input that contributed it. A path already in the
// set keeps its first origin; Add then returns that origin and false.
func (ps *pathSet) Add(path, origin string) (string, bool) {
	// Insert would overwrite the context of an existing entry
	if itemPtr, existing := ps.skiplist.Find(path); itemPtr != nil {
		return existing, false
	}
	ps.skiplist.Insert(&pathEntry{path: path}, origin)
	return origin, true
}

// Len returns the number of paths in the set
func (ps *pathSet) Len() int {
	return ps.skiplist.Length()
}

// ForEach visits paths in sorted order until callback returns false
func (ps *pathSet) ForEach(callback func(path, origin string) bool) {
	for current := ps.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item().path, current.Context()) {
			break
		}
	}
}

// Paths returns the set as a sorted slice
func (ps *pathSet) Paths() []string {
	paths := make([]string, 0, ps.Len())
	ps.ForEach(func(path, _ string) bool {
		paths = append(paths, path)
		return true
	})
	return paths
}
