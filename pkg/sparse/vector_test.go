package sparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spopt "k3l.io/go-amge/pkg/sparse/option"
)

func TestVector_MulVec(t *testing.T) {
	// 3x5 restriction-like operator
	m := NewCSRMatrix(3, 5, []CooEntry{
		{0, 0, 0.5},
		{0, 1, 0.5},
		{1, 1, 0.5},
		{1, 2, 1.0},
		{2, 3, 2.0},
		{2, 4, -1.0},
	}, spopt.AllowNegative)
	x := NewDenseVector([]float64{2, 4, 6, 1, 2})
	var y Vector
	require.NoError(t, y.MulVec(context.Background(), m, x))
	assert.Equal(t, 3, y.Dim)
	// row 2 cancels out and is not stored
	assert.Equal(t, []float64{3, 8, 0}, y.Dense())
	assert.Equal(t, 2, y.NNZ())

	err := y.MulVec(context.Background(), m, NewDenseVector([]float64{1, 2}))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestVector_MulVec_Cancelled(t *testing.T) {
	m := NewCSRMatrix(4, 4, []CooEntry{{0, 0, 1}, {3, 3, 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var y Vector
	err := y.MulVec(ctx, m, NewDenseVector([]float64{1, 1, 1, 1}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := NewVector(5, []Entry{{3, 1.0}, {0, -2.0}})
	v2 := NewVector(5, []Entry{{0, 2.0}, {4, 0.5}})
	assert.Equal(t, []Entry{{0, -2.0}, {3, 1.0}}, v1.Entries)
	assert.Equal(t, -4.0, VecDot(v1, v2))
	assert.Equal(t, 0.0, VecDot(v1, NewVector(5, nil)))
	assert.Equal(t, 3.0, v1.Norm1())
	assert.Equal(t, -1.0, v1.Sum())
	assert.Equal(t, []float64{-2, 0, 0, 1, 0}, v1.Dense())
	assert.Equal(t, 2, NewDenseVector([]float64{0, 1, 0, 2}).NNZ())
}
