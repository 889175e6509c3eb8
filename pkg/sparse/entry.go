package sparse

import (
	"sort"
)

// Entry is an entry in a sparse vector or matrix.
type Entry struct {
	// Index is the index of the entry.
	// Context decides the meaning: For example, it is a column index when used
	// as a compressed sparse row (CSR) matrix.
	Index int

	// Value is the entry value.
	// Explicit zeros are kept only where the spopt.IncludeZero option says so.
	Value float64
}

// CooEntry is a sparse matrix coordinate-format ("Coo") entry.
// Used as an input to a sparse matrix builder.
type CooEntry struct {
	Row, Column int
	Value       float64
}

// EntriesByIndex sorts Entry objects by index.
type EntriesByIndex []Entry

func (a EntriesByIndex) Len() int           { return len(a) }
func (a EntriesByIndex) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a EntriesByIndex) Less(i, j int) bool { return a[i].Index < a[j].Index }

// SortEntriesByIndex sorts the given entries in-place by index and returns it.
// The sort is stable, so among entries at the same index
// the one appended last stays last.
func SortEntriesByIndex(entries []Entry) []Entry {
	sort.Stable(EntriesByIndex(entries))
	return entries
}
