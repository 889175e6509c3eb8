package amge

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
	"k3l.io/go-amge/pkg/sparse"
)

type columnCount struct {
	Column, Count int
}

// ComputeWeights fills b.DiagElements with partition-of-unity weights.
// Collective.
//
// The weight of a slot is 1/n, where n is the number of (row, slot) pairs
// on all ranks that refer to the same fine DoF.  Each rank counts its own
// references per DoF and sends the counts to the DoF's owner in the columns
// partition, which adds them up and sends the totals back.
func ComputeWeights(
	ctx context.Context, c *comm.Comm, columns *index.Partition,
	b *LocalBasis,
) error {
	if columns.NumRanks() != c.Size() {
		return errors.Wrapf(ErrLayoutMismatch,
			"%d column ranges for %d ranks", columns.NumRanks(), c.Size())
	}
	counts := make(map[int]int)
	for _, dofs := range b.DoFIndicesMaps {
		for _, dof := range dofs {
			counts[dof]++
		}
	}
	out := make([][]columnCount, c.Size())
	for dof, count := range counts {
		owner, err := columns.Owner(dof)
		if err != nil {
			return errors.Wrapf(ErrLayoutMismatch, "DoF %d: %v", dof, err)
		}
		out[owner] = append(out[owner], columnCount{Column: dof, Count: count})
	}
	for _, part := range out {
		sort.Slice(part, func(i, j int) bool {
			return part[i].Column < part[j].Column
		})
	}
	in, err := comm.AllToAll(ctx, c, out)
	if err != nil {
		return errors.Wrap(err, "cannot send reference counts")
	}
	totals := make(map[int]int)
	for _, part := range in {
		for _, cc := range part {
			totals[cc.Column] += cc.Count
		}
	}
	reply := make([][]int, c.Size())
	for rank, part := range in {
		reply[rank] = make([]int, len(part))
		for k, cc := range part {
			reply[rank][k] = totals[cc.Column]
		}
	}
	back, err := comm.AllToAll(ctx, c, reply)
	if err != nil {
		return errors.Wrap(err, "cannot return reference totals")
	}
	multiplicity := make(map[int]int, len(counts))
	for rank, part := range out {
		for k, cc := range part {
			multiplicity[cc.Column] = back[rank][k]
		}
	}
	weights := make([][]float64, len(b.DoFIndicesMaps))
	for i, dofs := range b.DoFIndicesMaps {
		weights[i] = make([]float64, len(dofs))
		for j, dof := range dofs {
			n := multiplicity[dof]
			if n < 1 {
				return invariantf("DoF %d referenced by row %d has multiplicity %d",
					dof, i, n)
			}
			weights[i][j] = 1 / float64(n)
		}
	}
	b.DiagElements = weights
	zerolog.Ctx(ctx).Trace().
		Int("dofs", len(counts)).
		Int("ownedDoFs", len(totals)).
		Msg("computed partition-of-unity weights")
	return nil
}

// CheckPartitionOfUnity returns the largest deviation from 1,
// over all referenced fine DoFs, of the sum of the weights referring to
// the DoF.  Collective.
func CheckPartitionOfUnity(
	ctx context.Context, c *comm.Comm, columns *index.Partition,
	b *LocalBasis,
) (float64, error) {
	if b.DiagElements == nil {
		return 0, invariantf("weights not computed")
	}
	if columns.NumRanks() != c.Size() {
		return 0, errors.Wrapf(ErrLayoutMismatch,
			"%d column ranges for %d ranks", columns.NumRanks(), c.Size())
	}
	partials := make(map[int]*sparse.KBNSummer)
	for i, dofs := range b.DoFIndicesMaps {
		for j, dof := range dofs {
			summer, ok := partials[dof]
			if !ok {
				summer = &sparse.KBNSummer{}
				partials[dof] = summer
			}
			summer.Add(b.DiagElements[i][j])
		}
	}
	out := make([][]sparse.Entry, c.Size())
	for dof, summer := range partials {
		owner, err := columns.Owner(dof)
		if err != nil {
			return 0, errors.Wrapf(ErrLayoutMismatch, "DoF %d: %v", dof, err)
		}
		out[owner] = append(out[owner], sparse.Entry{Index: dof, Value: summer.Sum()})
	}
	for _, entries := range out {
		sparse.SortEntriesByIndex(entries)
	}
	in, err := comm.AllToAll(ctx, c, out)
	if err != nil {
		return 0, err
	}
	sums := make(map[int]*sparse.KBNSummer)
	for _, entries := range in {
		for _, e := range entries {
			summer, ok := sums[e.Index]
			if !ok {
				summer = &sparse.KBNSummer{}
				sums[e.Index] = summer
			}
			summer.Add(e.Value)
		}
	}
	worst := 0.0
	for _, summer := range sums {
		worst = max(worst, math.Abs(summer.Sum()-1))
	}
	return comm.AllReduceMax(ctx, c, worst)
}
