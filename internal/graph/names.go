package graph

import (
	"slices"
	"strings"
)

// NameIndex maps lowercased display names to the ids sharing that name.
type NameIndex map[string][]string

// Add records id under name. Adding the same pair twice is a no-op.
func (idx NameIndex) Add(name, id string) {
	key := normalizeName(name)
	ids := idx[key]
	pos, found := slices.BinarySearch(ids, id)
	if found {
		return
	}
	idx[key] = slices.Insert(ids, pos, id)
}

// Resolve returns the sorted ids matching name, ignoring case and
// surrounding whitespace. The result is nil when nobody matches.
func (idx NameIndex) Resolve(name string) []string {
	ids := idx[normalizeName(name)]
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (idx NameIndex) remove(name, id string) {
	key := normalizeName(name)
	ids := idx[key]
	pos, found := slices.BinarySearch(ids, id)
	if !found {
		return
	}
	ids = slices.Delete(ids, pos, pos+1)
	if len(ids) == 0 {
		delete(idx, key)
		return
	}
	idx[key] = ids
}
