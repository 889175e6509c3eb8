package comm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectives(t *testing.T) {
	for _, size := range []int{1, 2, 3, 4} {
		t.Run(fmt.Sprintf("%dRanks", size), func(t *testing.T) {
			var mu sync.Mutex
			gathered := make(map[int][]int)
			err := Run(context.Background(), size,
				func(ctx context.Context, c *Comm) error {
					assert.Equal(t, size, c.Size())
					values, err := AllGather(ctx, c, c.Rank()*10)
					if err != nil {
						return err
					}
					mu.Lock()
					gathered[c.Rank()] = values
					mu.Unlock()

					sum, err := AllReduceSum(ctx, c, float64(c.Rank()+1))
					if err != nil {
						return err
					}
					assert.Equal(t, float64(size*(size+1)/2), sum)

					biggest, err := AllReduceMax(ctx, c, c.Rank())
					if err != nil {
						return err
					}
					assert.Equal(t, size-1, biggest)

					root := size - 1
					got, err := Broadcast(ctx, c, root, fmt.Sprint("from ", c.Rank()))
					if err != nil {
						return err
					}
					assert.Equal(t, fmt.Sprint("from ", root), got)

					out := make([][]int, size)
					for to := range out {
						out[to] = []int{c.Rank(), to}
					}
					in, err := AllToAll(ctx, c, out)
					if err != nil {
						return err
					}
					for from, msg := range in {
						assert.Equal(t, []int{from, c.Rank()}, msg)
					}
					return Barrier(ctx, c)
				})
			require.NoError(t, err)
			want := make([]int, size)
			for rank := range want {
				want[rank] = rank * 10
			}
			for rank := 0; rank < size; rank++ {
				assert.Equal(t, want, gathered[rank])
			}
		})
	}
}

func TestRun_ErrorCancelsOtherRanks(t *testing.T) {
	errBoom := errors.New("boom")
	err := Run(context.Background(), 3,
		func(ctx context.Context, c *Comm) error {
			if c.Rank() == 1 {
				return errBoom
			}
			// never satisfied since rank 1 does not participate
			return Barrier(ctx, c)
		})
	assert.ErrorIs(t, err, errBoom)
}

func TestAllToAll_Mismatch(t *testing.T) {
	err := Run(context.Background(), 2,
		func(ctx context.Context, c *Comm) error {
			if c.Rank() == 0 {
				_, err := AllGather(ctx, c, 1)
				return err
			}
			_, err := AllGather(ctx, c, "one")
			return err
		})
	assert.ErrorIs(t, err, ErrCollectiveMismatch)
}

func TestAllToAll_WrongLength(t *testing.T) {
	_, err := AllToAll(context.Background(), Self(), []int{1, 2})
	assert.Error(t, err)
}

func TestSelf(t *testing.T) {
	c := Self()
	assert.Equal(t, 0, c.Rank())
	assert.Equal(t, 1, c.Size())
	v, err := AllReduceSum(context.Background(), c, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, "rank 0/1", c.String())
}

func TestComm_SameWorld(t *testing.T) {
	w := NewWorld(2)
	assert.True(t, w.Comm(0).SameWorld(w.Comm(1)))
	assert.True(t, w.Comm(1).SameWorld(w.Comm(1)))
	assert.False(t, w.Comm(0).SameWorld(NewWorld(2).Comm(0)))
	assert.False(t, Self().SameWorld(Self()))
}
