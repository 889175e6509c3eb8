package amge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
)

// sharedBasis returns the rows of agglomerates a with a%size == rank,
// each covering all of dofs with an all-ones eigenvector.
func sharedBasis(t *testing.T, numAggs, rank, size int, dofs []int) *LocalBasis {
	var bases []AgglomerateBasis
	for a := rank; a < numAggs; a += size {
		ones := make([]float64, len(dofs))
		for j := range ones {
			ones[j] = 1
		}
		bases = append(bases, AgglomerateBasis{
			Agglomerate:  a,
			DoFs:         dofs,
			Eigenvectors: [][]float64{ones},
		})
	}
	b, err := CollectLocalBasis(bases)
	require.NoError(t, err)
	return b
}

func TestComputeWeights_NoSharing(t *testing.T) {
	b := &LocalBasis{
		Eigenvectors:         [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		DoFIndicesMaps:       [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
		NumLocalEigenvectors: []int{1, 1, 1},
	}
	c := comm.Self()
	err := ComputeWeights(context.Background(), c, index.EvenPartition(10, 1), b)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, b.DiagElements)
}

func TestComputeWeights_Chain(t *testing.T) {
	b := &LocalBasis{
		Eigenvectors:         [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		DoFIndicesMaps:       [][]int{{0, 1, 2}, {2, 3, 4}, {4, 5, 6}},
		NumLocalEigenvectors: []int{1, 1, 1},
	}
	c := comm.Self()
	columns := index.EvenPartition(7, 1)
	require.NoError(t, ComputeWeights(context.Background(), c, columns, b))
	assert.Equal(t, [][]float64{{1, 1, 0.5}, {0.5, 1, 0.5}, {0.5, 1, 1}},
		b.DiagElements)
	deviation, err := CheckPartitionOfUnity(context.Background(), c, columns, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, deviation)
}

func TestComputeWeights_SharedAcrossRanks(t *testing.T) {
	dofs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	for size := 1; size <= 4; size++ {
		t.Run(fmt.Sprintf("%dRanks", size), func(t *testing.T) {
			deviations := make([]float64, size)
			err := comm.Run(context.Background(), size,
				func(ctx context.Context, c *comm.Comm) error {
					b := sharedBasis(t, 3, c.Rank(), size, dofs)
					columns := index.EvenPartition(len(dofs), size)
					if err := ComputeWeights(ctx, c, columns, b); err != nil {
						return err
					}
					for _, row := range b.DiagElements {
						for _, w := range row {
							if w != 1.0/3 {
								return fmt.Errorf("weight %v", w)
							}
						}
					}
					var err error
					deviations[c.Rank()], err =
						CheckPartitionOfUnity(ctx, c, columns, b)
					return err
				})
			require.NoError(t, err)
			for _, deviation := range deviations {
				assert.InDelta(t, 0, deviation, 1e-15)
			}
		})
	}
}

func TestComputeWeights_LayoutMismatch(t *testing.T) {
	c := comm.Self()
	b := &LocalBasis{
		Eigenvectors:         [][]float64{{1, 1}},
		DoFIndicesMaps:       [][]int{{0, 12}},
		NumLocalEigenvectors: []int{1},
	}
	err := ComputeWeights(context.Background(), c, index.EvenPartition(10, 1), b)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	err = ComputeWeights(context.Background(), c, index.EvenPartition(20, 2), b)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Nil(t, b.DiagElements)

	_, err = CheckPartitionOfUnity(context.Background(), c,
		index.EvenPartition(20, 1), b)
	assert.ErrorIs(t, err, ErrInvariant)
}
