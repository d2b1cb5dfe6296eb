package search

// Visited is the set of person ids that have been enqueued at least once.
// It is keyed by person, not by node, so a person reached through two
// different movies is still expanded only once.
type Visited map[string]struct{}

// NewVisited returns a set seeded with ids.
func NewVisited(ids ...string) Visited {
	v := make(Visited, len(ids))
	for _, id := range ids {
		v[id] = struct{}{}
	}
	return v
}

// Contains reports whether id has been marked.
func (v Visited) Contains(id string) bool {
	_, ok := v[id]
	return ok
}

// Add marks id and reports whether it was newly added.
func (v Visited) Add(id string) bool {
	if _, ok := v[id]; ok {
		return false
	}
	v[id] = struct{}{}
	return true
}

// Len returns the number of marked ids.
func (v Visited) Len() int {
	return len(v)
}
