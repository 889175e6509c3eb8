package distributed

import (
	"context"
	"math"
	"slices"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
	"k3l.io/go-amge/pkg/sparse"
	"k3l.io/go-amge/pkg/util"
)

// Vector is a dense vector whose elements are distributed across ranks
// per a partition; each rank stores its owned range only.
type Vector struct {
	comm   *comm.Comm
	layout *index.Partition
	owned  index.Range
	values []float64
}

// NewVector returns a zero vector distributed per the given partition.
func NewVector(c *comm.Comm, layout *index.Partition) (*Vector, error) {
	if layout.NumRanks() != c.Size() {
		return nil, ErrLayoutMismatch
	}
	owned := layout.Range(c.Rank())
	return &Vector{
		comm:   c,
		layout: layout,
		owned:  owned,
		values: make([]float64, owned.Len()),
	}, nil
}

// Layout returns the partition the vector is distributed per.
func (v *Vector) Layout() *index.Partition { return v.layout }

// Owned returns the global index range owned by this rank.
func (v *Vector) Owned() index.Range { return v.owned }

// Values returns the owned elements; element k is global index
// Owned().Begin + k.  The slice aliases the vector storage.
func (v *Vector) Values() []float64 { return v.values }

// Set sets the element at the given global index.
// Only owned elements may be set; others are silently ignored,
// so every rank can run the same loop over all global indices.
func (v *Vector) Set(i int, value float64) {
	if v.owned.Contains(i) {
		v.values[i-v.owned.Begin] = value
	}
}

// At returns the element at the given owned global index.
func (v *Vector) At(i int) (float64, error) {
	if !v.owned.Contains(i) {
		return 0, util.IndexOutOfBoundsError{Index: i, Bound: v.owned.End}
	}
	return v.values[i-v.owned.Begin], nil
}

// Fill sets all elements to the given value.
func (v *Vector) Fill(value float64) {
	for k := range v.values {
		v.values[k] = value
	}
}

// Norm1 returns the global 1-norm.  Collective.
func (v *Vector) Norm1(ctx context.Context) (float64, error) {
	var summer sparse.KBNSummer
	for _, value := range v.values {
		summer.Add(math.Abs(value))
	}
	return v.reduceSum(ctx, summer.Sum())
}

// Sum returns the global sum of elements.  Collective.
func (v *Vector) Sum(ctx context.Context) (float64, error) {
	return v.reduceSum(ctx, sparse.KBNSum(v.values...))
}

func (v *Vector) reduceSum(ctx context.Context, local float64) (float64, error) {
	partials, err := comm.AllGather(ctx, v.comm, local)
	if err != nil {
		return 0, err
	}
	return sparse.KBNSum(partials...), nil
}

// Gather returns the whole vector on every rank.  Collective.
func (v *Vector) Gather(ctx context.Context) ([]float64, error) {
	parts, err := comm.AllGather(ctx, v.comm, slices.Clone(v.values))
	if err != nil {
		return nil, err
	}
	full := make([]float64, 0, v.layout.Total())
	for _, part := range parts {
		full = append(full, part...)
	}
	return full, nil
}
