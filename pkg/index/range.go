// Package index holds global DoF index ranges and their per-rank layout.
package index

import (
	"fmt"
)

// Range is the half-open interval [Begin, End) of global indices.
type Range struct {
	Begin, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Begin }

// Contains returns whether the given index falls inside the range.
func (r Range) Contains(i int) bool { return r.Begin <= i && i < r.End }

// Indices returns all indices of the range in ascending order.
func (r Range) Indices() []int {
	indices := make([]int, 0, max(r.Len(), 0))
	for i := r.Begin; i < r.End; i++ {
		indices = append(indices, i)
	}
	return indices
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}
