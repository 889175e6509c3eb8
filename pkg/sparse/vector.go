package sparse

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Vector is a sparse vector.
type Vector struct {
	// Dim is the dimension of the vector.
	Dim int

	// Entries contain sparse entries, sorted by their Entry.Index.
	// For each Entry in Entries, 0 <= Entry.Index < Dim holds.
	Entries []Entry
}

// NNZ returns the number of stored entries.
func (v *Vector) NNZ() int {
	return len(v.Entries)
}

// NewVector creates and returns a new sparse vector with given entries.
func NewVector(dim int, entries []Entry) *Vector {
	return &Vector{
		Dim:     dim,
		Entries: SortEntriesByIndex(append(entries[:0:0], entries...)),
	}
}

// NewDenseVector creates a sparse vector holding the non-zero elements
// of the given dense slice.
func NewDenseVector(values []float64) *Vector {
	v := &Vector{Dim: len(values)}
	for i, value := range values {
		if value != 0 {
			v.Entries = append(v.Entries, Entry{Index: i, Value: value})
		}
	}
	return v
}

// Dense returns the vector contents as a dense slice.
func (v *Vector) Dense() []float64 {
	dense := make([]float64, v.Dim)
	for _, e := range v.Entries {
		dense[e.Index] = e.Value
	}
	return dense
}

// Sum computes the sum of all vector elements.
func (v *Vector) Sum() float64 {
	var summer KBNSummer
	for _, e := range v.Entries {
		summer.Add(e.Value)
	}
	return summer.Sum()
}

// VecDot computes the dot product of the two given sparse vectors.
func VecDot(v1, v2 *Vector) float64 {
	n2 := len(v2.Entries)
	if n2 == 0 {
		return 0
	}
	i2, e2 := 0, v2.Entries[0]
	var summer KBNSummer
OverallLoop:
	for _, e1 := range v1.Entries {
		for e2.Index <= e1.Index {
			if e1.Index == e2.Index {
				summer.Add(e1.Value * e2.Value)
			}
			i2 += 1
			if i2 == n2 {
				break OverallLoop
			}
			e2 = v2.Entries[i2]
		}
	}
	return summer.Sum()
}

// MulVec stores m multiplied by v1 into the receiver.
//
// m may be rectangular; v1 must have as many elements as m has columns,
// and the result has as many elements as m has rows.
// Rows are split into contiguous chunks, one per worker.
func (v *Vector) MulVec(
	ctx context.Context, m *Matrix, v1 *Vector,
) error {
	rows, cols := m.Dims()
	if cols != v1.Dim {
		return ErrDimensionMismatch
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	products := make([]float64, rows)
	numWorkers := min(runtime.GOMAXPROCS(0), max(rows, 1))
	chunk := (rows + numWorkers - 1) / numWorkers
	eg, ctx := errgroup.WithContext(ctx)
	for begin := 0; begin < rows; begin += chunk {
		end := min(begin+chunk, rows)
		eg.Go(func() error {
			for row := begin; row < end; row++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				products[row] = VecDot(m.RowVector(row), v1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	*v = *NewDenseVector(products)
	return nil
}

// Norm1 returns the 1-norm (sum of absolute values of elements).
func (v *Vector) Norm1() float64 {
	var summer KBNSummer
	for _, e := range v.Entries {
		summer.Add(math.Abs(e.Value))
	}
	return summer.Sum()
}
