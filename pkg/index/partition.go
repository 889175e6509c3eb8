package index

import (
	"slices"
	"sort"

	"k3l.io/go-amge/pkg/util"
)

// Partition splits the global index space [0, Total()) into one contiguous
// range per rank, in rank order.
//
// offsets has one more element than the number of ranks;
// rank r owns [offsets[r], offsets[r+1]).
type Partition struct {
	offsets []int
}

// NewPartition returns a partition where rank r owns sizes[r] indices.
func NewPartition(sizes []int) (*Partition, error) {
	offsets := make([]int, 1, len(sizes)+1)
	for _, size := range sizes {
		if size < 0 {
			return nil, util.IndexOutOfBoundsError{Index: size, Bound: 0}
		}
		offsets = append(offsets, offsets[len(offsets)-1]+size)
	}
	return &Partition{offsets: offsets}, nil
}

// EvenPartition splits total indices among n ranks as evenly as possible;
// lower ranks receive the remainder.
func EvenPartition(total, n int) *Partition {
	sizes := make([]int, n)
	for rank := range sizes {
		sizes[rank] = total / n
		if rank < total%n {
			sizes[rank]++
		}
	}
	return util.Must(NewPartition(sizes))
}

// NumRanks returns the number of ranks.
func (p *Partition) NumRanks() int { return len(p.offsets) - 1 }

// Total returns the global number of indices.
func (p *Partition) Total() int { return p.offsets[len(p.offsets)-1] }

// Range returns the range owned by the given rank.
func (p *Partition) Range(rank int) Range {
	return Range{Begin: p.offsets[rank], End: p.offsets[rank+1]}
}

// Sizes returns the number of indices owned by each rank.
func (p *Partition) Sizes() []int {
	sizes := make([]int, p.NumRanks())
	for rank := range sizes {
		sizes[rank] = p.offsets[rank+1] - p.offsets[rank]
	}
	return sizes
}

// Owner returns the rank owning the given global index.
func (p *Partition) Owner(i int) (int, error) {
	if i < 0 || i >= p.Total() {
		return 0, util.IndexOutOfBoundsError{Index: i, Bound: p.Total()}
	}
	// empty ranks share offsets and are skipped
	return sort.SearchInts(p.offsets, i+1) - 1, nil
}

// Equal returns whether the two partitions assign identical ranges.
func (p *Partition) Equal(p2 *Partition) bool {
	return slices.Equal(p.offsets, p2.offsets)
}

// PrefixSum returns, for each rank, the sum of sizes of lower ranks.
func PrefixSum(sizes []int) []int {
	offsets := make([]int, len(sizes))
	sum := 0
	for rank, size := range sizes {
		offsets[rank] = sum
		sum += size
	}
	return offsets
}
