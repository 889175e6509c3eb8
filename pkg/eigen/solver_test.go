package eigen

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// path returns the graph Laplacian of a path of n vertices,
// whose eigenvalues are 2 - 2cos(kπ/n).
func path(n int) *mat.SymDense {
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n-1; i++ {
		a.SetSym(i, i, a.At(i, i)+1)
		a.SetSym(i+1, i+1, a.At(i+1, i+1)+1)
		a.SetSym(i, i+1, -1)
	}
	return a
}

func TestDenseSolver_Standard(t *testing.T) {
	ctx := context.Background()
	result, err := DenseSolver{}.Solve(ctx, path(4), nil, 2, 1e-10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converged)
	assert.InDelta(t, 0, result.Values[0], 1e-12)
	assert.InDelta(t, 2-2*math.Cos(math.Pi/4), result.Values[1], 1e-12)
	// constant vector, unit norm, positive
	for _, c := range result.Vectors[0] {
		assert.InDelta(t, 0.5, c, 1e-12)
	}
	// largest-magnitude coefficient is positive
	v := result.Vectors[1]
	assert.Greater(t, math.Abs(v[0]), 0.5)
	largest := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[largest]) {
			largest = i
		}
	}
	assert.Positive(t, v[largest])
}

func TestDenseSolver_CountCappedAtDimension(t *testing.T) {
	result, err := DenseSolver{}.Solve(context.Background(), path(3), nil, 10,
		1e-10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Converged)
	assert.Len(t, result.Vectors, 3)
	assert.True(t, result.Values[0] <= result.Values[1])
	assert.True(t, result.Values[1] <= result.Values[2])
}

func TestDenseSolver_DiagonalMass(t *testing.T) {
	// A = diag(2, 12), M = diag(1, 4): eigenvalues 2 and 3
	a := mat.NewSymDense(2, []float64{2, 0, 0, 12})
	result, err := DenseSolver{}.Solve(context.Background(), a,
		[]float64{1, 4}, 2, 1e-10)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3}, result.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, result.Vectors[0], 1e-12)
	// M-normalized: 4 x² = 1
	assert.InDeltaSlice(t, []float64{0, 0.5}, result.Vectors[1], 1e-12)

	_, err = DenseSolver{}.Solve(context.Background(), a,
		[]float64{1, 0}, 1, 1e-10)
	assert.Error(t, err)
	_, err = DenseSolver{}.Solve(context.Background(), a,
		[]float64{1}, 1, 1e-10)
	assert.Error(t, err)
}

func TestDenseSolver_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := DenseSolver{}.Solve(ctx, path(3), nil, 0, 1e-10)
	assert.Error(t, err)

	// no pair can meet a negative tolerance
	_, err = DenseSolver{}.Solve(ctx, path(3), nil, 1, -1)
	assert.ErrorIs(t, err, ErrNoConvergence)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = DenseSolver{}.Solve(cancelled, path(3), nil, 1, 1e-10)
	assert.ErrorIs(t, err, context.Canceled)
}
