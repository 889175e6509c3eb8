package distributed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
	"k3l.io/go-amge/pkg/sparse"
)

const (
	testRows = 5
	testCols = 7
)

// inPattern is the sparsity pattern of the test matrix.
func inPattern(row, col int) bool { return (row+2*col)%3 == 0 }

func assembleTestMatrix(
	ctx context.Context, c *comm.Comm, mode WriteMode,
) (*Matrix, error) {
	m, err := NewMatrix(c,
		index.EvenPartition(testRows, c.Size()),
		index.EvenPartition(testCols, c.Size()))
	if err != nil {
		return nil, err
	}
	// every rank writes every entry, so most writes are routed off-rank
	for row := 0; row < testRows; row++ {
		for col := 0; col < testCols; col++ {
			if !inPattern(row, col) {
				continue
			}
			switch mode {
			case Insert:
				err = m.Set(row, col, float64(c.Rank()*100+row*10+col))
			case Add:
				err = m.Add(row, col, float64(row*10+col))
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return m, m.Compress(ctx)
}

func TestMatrix_Compress(t *testing.T) {
	for _, mode := range []WriteMode{Insert, Add} {
		for _, size := range []int{1, 2, 3} {
			t.Run(fmt.Sprintf("%s/%dRanks", mode, size), func(t *testing.T) {
				err := comm.Run(context.Background(), size,
					func(ctx context.Context, c *comm.Comm) error {
						m, err := assembleTestMatrix(ctx, c, mode)
						if err != nil {
							return err
						}
						rows, cols := m.Dims()
						assert.Equal(t, testRows, rows)
						assert.Equal(t, testCols, cols)
						owned := m.OwnedRows()
						for row := owned.Begin; row < owned.End; row++ {
							for col := 0; col < testCols; col++ {
								v, err := m.At(row, col)
								require.NoError(t, err)
								var want float64
								switch {
								case !inPattern(row, col):
								case mode == Insert:
									want = float64((size-1)*100 + row*10 + col)
								default:
									want = float64(size * (row*10 + col))
								}
								assert.Equal(t, want, v, "(%d, %d)", row, col)
							}
						}
						// (0, 0) is an explicit zero in add mode on rank 0
						if owned.Contains(0) {
							entries, err := m.RowEntries(0)
							require.NoError(t, err)
							assert.Equal(t, 0, entries[0].Index)
						}
						_, err = m.At(owned.End, 0)
						assert.Error(t, err)
						return nil
					})
				require.NoError(t, err)
			})
		}
	}
}

func TestMatrix_MulVec(t *testing.T) {
	for _, size := range []int{1, 2, 3, 4} {
		t.Run(fmt.Sprintf("%dRanks", size), func(t *testing.T) {
			err := comm.Run(context.Background(), size,
				func(ctx context.Context, c *comm.Comm) error {
					m, err := assembleTestMatrix(ctx, c, Add)
					if err != nil {
						return err
					}
					serial, err := m.Gather(ctx)
					if err != nil {
						return err
					}
					nnz, err := comm.AllReduceSum(ctx, c, m.LocalNNZ())
					if err != nil {
						return err
					}
					assert.Equal(t, serial.NNZ(), nnz)

					x, err := NewVector(c, m.ColumnPartition())
					if err != nil {
						return err
					}
					dense := make([]float64, testCols)
					for col := range dense {
						dense[col] = float64(col + 1)
						x.Set(col, dense[col])
					}
					y, err := m.MulVec(ctx, x)
					if err != nil {
						return err
					}
					got, err := y.Gather(ctx)
					if err != nil {
						return err
					}
					var want sparse.Vector
					require.NoError(t, want.MulVec(ctx, serial,
						sparse.NewDenseVector(dense)))
					assert.Equal(t, want.Dense(), got)

					xt, err := m.TMulVec(ctx, y)
					if err != nil {
						return err
					}
					gotT, err := xt.Gather(ctx)
					if err != nil {
						return err
					}
					serialT, err := serial.Transpose(ctx)
					require.NoError(t, err)
					var wantT sparse.Vector
					require.NoError(t, wantT.MulVec(ctx, serialT, &want))
					assert.InDeltaSlice(t, wantT.Dense(), gotT, 1e-9)

					_, err = m.MulVec(ctx, y)
					assert.ErrorIs(t, err, ErrLayoutMismatch)
					return nil
				})
			require.NoError(t, err)
		})
	}
}

func TestMatrix_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := comm.Self()
	m, err := NewMatrix(c, index.EvenPartition(2, 1), index.EvenPartition(2, 1))
	require.NoError(t, err)
	assert.False(t, m.IsCompressed())

	x, err := NewVector(c, m.ColumnPartition())
	require.NoError(t, err)
	_, err = m.MulVec(ctx, x)
	assert.ErrorIs(t, err, ErrNotCompressed)
	_, err = m.At(0, 0)
	assert.ErrorIs(t, err, ErrNotCompressed)
	assert.ErrorIs(t, m.Scale(2), ErrNotCompressed)

	require.NoError(t, m.Set(0, 1, 4))
	assert.ErrorIs(t, m.Add(1, 1, 4), ErrWriteModeMismatch)
	assert.Error(t, m.Set(2, 0, 1))
	assert.Error(t, m.Set(0, -1, 1))

	require.NoError(t, m.Compress(ctx))
	assert.True(t, m.IsCompressed())
	assert.ErrorIs(t, m.Set(0, 0, 1), ErrFrozen)
	assert.ErrorIs(t, m.Compress(ctx), ErrFrozen)

	require.NoError(t, m.Scale(0.5))
	v, err := m.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 1, m.LocalNNZ())
	assert.Equal(t, index.Range{Begin: 0, End: 2}, m.OwnedColumns())
}

func TestNewMatrix_LayoutMismatch(t *testing.T) {
	_, err := NewMatrix(comm.NewWorld(2).Comm(0),
		index.EvenPartition(4, 2), index.EvenPartition(4, 3))
	assert.ErrorIs(t, err, ErrLayoutMismatch)
	_, err = NewVector(comm.Self(), index.EvenPartition(4, 2))
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestCompress_ModeMismatchAcrossRanks(t *testing.T) {
	err := comm.Run(context.Background(), 2,
		func(ctx context.Context, c *comm.Comm) error {
			m, err := NewMatrix(c, index.EvenPartition(2, 2),
				index.EvenPartition(2, 2))
			if err != nil {
				return err
			}
			if c.Rank() == 0 {
				err = m.Set(1, 1, 1)
			} else {
				err = m.Add(0, 0, 1)
			}
			if err != nil {
				return err
			}
			return m.Compress(ctx)
		})
	assert.ErrorIs(t, err, ErrWriteModeMismatch)
}

func TestVector(t *testing.T) {
	err := comm.Run(context.Background(), 3,
		func(ctx context.Context, c *comm.Comm) error {
			v, err := NewVector(c, index.EvenPartition(7, 3))
			if err != nil {
				return err
			}
			for i := 0; i < 7; i++ {
				v.Set(i, float64(i)-3)
			}
			norm, err := v.Norm1(ctx)
			if err != nil {
				return err
			}
			assert.Equal(t, 12.0, norm)
			sum, err := v.Sum(ctx)
			if err != nil {
				return err
			}
			assert.Equal(t, 0.0, sum)
			full, err := v.Gather(ctx)
			if err != nil {
				return err
			}
			assert.Equal(t, []float64{-3, -2, -1, 0, 1, 2, 3}, full)
			_, err = v.At(v.Owned().End)
			assert.Error(t, err)
			return nil
		})
	require.NoError(t, err)
}
