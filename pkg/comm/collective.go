package comm

import (
	"context"

	"github.com/go-faster/errors"

	"k3l.io/go-amge/pkg/util"
)

// ErrCollectiveMismatch is returned when ranks enter different collectives
// (or the same collective with different element types) at the same step.
var ErrCollectiveMismatch = errors.New("collective mismatch between ranks")

func recvAs[T any](ctx context.Context, c *Comm, from int) (T, error) {
	var zero T
	msg, err := c.recv(ctx, from)
	if err != nil {
		return zero, err
	}
	v, ok := msg.(T)
	if !ok {
		return zero, errors.Wrapf(ErrCollectiveMismatch,
			"rank %d got %T from rank %d, want %T", c.rank, msg, from, zero)
	}
	return v, nil
}

// AllToAll sends out[r] to rank r and returns what every rank sent to
// the receiver, indexed by source rank.
func AllToAll[T any](ctx context.Context, c *Comm, out []T) ([]T, error) {
	size := c.Size()
	if len(out) != size {
		return nil, util.IndexOutOfBoundsError{Index: len(out), Bound: size}
	}
	for to := 0; to < size; to++ {
		if to == c.rank {
			continue
		}
		if err := c.send(ctx, to, out[to]); err != nil {
			return nil, err
		}
	}
	in := make([]T, size)
	in[c.rank] = out[c.rank]
	for from := 0; from < size; from++ {
		if from == c.rank {
			continue
		}
		v, err := recvAs[T](ctx, c, from)
		if err != nil {
			return nil, err
		}
		in[from] = v
	}
	return in, nil
}

// AllGather returns the values contributed by all ranks,
// indexed by rank.
func AllGather[T any](ctx context.Context, c *Comm, v T) ([]T, error) {
	return AllToAll(ctx, c, util.Filled(c.Size(), v))
}

// AllReduceSum returns the sum of the values contributed by all ranks.
// The sum is accumulated in rank order on every rank,
// so all ranks obtain bit-identical results.
func AllReduceSum[T util.Number](ctx context.Context, c *Comm, v T) (T, error) {
	values, err := AllGather(ctx, c, v)
	if err != nil {
		return 0, err
	}
	return util.Sum(values), nil
}

// AllReduceMax returns the maximum of the values contributed by all ranks.
func AllReduceMax[T util.Number](ctx context.Context, c *Comm, v T) (T, error) {
	values, err := AllGather(ctx, c, v)
	if err != nil {
		return 0, err
	}
	result := values[0]
	for _, value := range values[1:] {
		result = max(result, value)
	}
	return result, nil
}

// Broadcast returns the value given by the root rank.
// v is ignored on the other ranks.
func Broadcast[T any](ctx context.Context, c *Comm, root int, v T) (T, error) {
	if root < 0 || root >= c.Size() {
		var zero T
		return zero, util.IndexOutOfBoundsError{Index: root, Bound: c.Size()}
	}
	values, err := AllGather(ctx, c, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return values[root], nil
}

// Barrier blocks until all ranks have entered it.
func Barrier(ctx context.Context, c *Comm) error {
	_, err := AllGather(ctx, c, struct{}{})
	return err
}
