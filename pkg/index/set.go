package index

import (
	"slices"
)

// Set is a sorted set of global indices,
// e.g. the locally relevant DoFs of a rank.
type Set struct {
	indices []int
}

// NewSet returns a set holding the given indices.
func NewSet(indices ...int) *Set {
	s := &Set{}
	s.Add(indices...)
	return s
}

// Add inserts the given indices.
func (s *Set) Add(indices ...int) {
	s.indices = append(s.indices, indices...)
	slices.Sort(s.indices)
	s.indices = slices.Compact(s.indices)
}

// AddRange inserts all indices of the given range.
func (s *Set) AddRange(r Range) { s.Add(r.Indices()...) }

// Contains returns whether the index is in the set.
func (s *Set) Contains(i int) bool {
	_, found := slices.BinarySearch(s.indices, i)
	return found
}

// Len returns the number of indices in the set.
func (s *Set) Len() int { return len(s.indices) }

// Indices returns (a copy of) the sorted indices.
func (s *Set) Indices() []int { return slices.Clone(s.indices) }
