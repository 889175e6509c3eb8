// Package comm provides an explicit distributed context for ranks
// that cooperate through collective operations.
//
// A World holds one message link per ordered pair of ranks.
// Each rank runs in its own goroutine and talks to others only through
// the collectives of this package, which every rank of the world
// must enter in the same order.
package comm

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"k3l.io/go-amge/pkg/util"
)

// linkCapacity is the number of in-flight messages per directed link.
const linkCapacity = 4

// World is a set of ranks able to exchange messages.
type World struct {
	size  int
	links [][]chan any // [from][to]
}

// NewWorld returns a new world of the given number of ranks.
func NewWorld(size int) *World {
	if size < 1 {
		panic(fmt.Sprintf("invalid world size %d", size))
	}
	links := make([][]chan any, size)
	for from := range links {
		links[from] = make([]chan any, size)
		for to := range links[from] {
			links[from][to] = make(chan any, linkCapacity)
		}
	}
	return &World{size: size, links: links}
}

// Size returns the number of ranks in the world.
func (w *World) Size() int { return w.size }

// Comm returns the communicator handle of the given rank.
func (w *World) Comm(rank int) *Comm {
	if rank < 0 || rank >= w.size {
		panic(util.IndexOutOfBoundsError{Index: rank, Bound: w.size})
	}
	return &Comm{rank: rank, world: w}
}

// Comm is the handle through which one rank participates in a world.
//
// A Comm is used by the goroutine of its rank only.
type Comm struct {
	rank  int
	world *World
}

// Self returns the communicator of a single-rank world.
func Self() *Comm { return NewWorld(1).Comm(0) }

// Rank returns the rank number of the receiver, in [0, Size()).
func (c *Comm) Rank() int { return c.rank }

// Size returns the number of ranks in the world.
func (c *Comm) Size() int { return c.world.size }

// SameWorld reports whether c and other belong to the same world.
func (c *Comm) SameWorld(other *Comm) bool { return c.world == other.world }

func (c *Comm) String() string {
	return fmt.Sprintf("rank %d/%d", c.rank, c.world.size)
}

func (c *Comm) send(ctx context.Context, to int, msg any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.world.links[c.rank][to] <- msg:
		return nil
	}
}

func (c *Comm) recv(ctx context.Context, from int) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-c.world.links[from][c.rank]:
		return msg, nil
	}
}

// Run runs fn once per rank of a new world of the given size,
// each in its own goroutine, and waits for all of them.
//
// The first error returned by any rank cancels the context passed to
// the others, which unblocks their pending collectives;
// Run then returns that first error.
func Run(
	ctx context.Context, size int,
	fn func(ctx context.Context, c *Comm) error,
) error {
	return RunWorld(ctx, NewWorld(size), fn)
}

// RunWorld is like Run, but uses the given world.
func RunWorld(
	ctx context.Context, w *World,
	fn func(ctx context.Context, c *Comm) error,
) error {
	eg, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < w.size; rank++ {
		c := w.Comm(rank)
		eg.Go(func() error {
			logger := util.RankLogger(ctx, rank)
			ctx := logger.WithContext(ctx)
			if err := fn(ctx, c); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("rank failed")
				return errors.Wrapf(err, "rank %d", rank)
			}
			return nil
		})
	}
	return eg.Wait()
}
