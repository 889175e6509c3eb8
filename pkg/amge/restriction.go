package amge

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/distributed"
	"k3l.io/go-amge/pkg/index"
)

// layoutReport is what each rank shares before assembly.
type layoutReport struct {
	Rows      int
	Invariant string
	Layout    string
}

// ComputeRestriction assembles the restriction matrix of a weighted local
// basis.  Collective.
//
// Local row i becomes coarse row rowOffset+i, where rowOffset is the
// number of local rows on lower ranks.  Slot j of row i becomes the entry
// (rowOffset+i, DoFIndicesMaps[i][j]) = DiagElements[i][j] *
// Eigenvectors[i][j].  The columns of the result are distributed like
// those of fine.
//
// The layout is checked on every rank before anything is written;
// if any rank finds a mismatch, all ranks fail with ErrLayoutMismatch.
func ComputeRestriction(
	ctx context.Context, c *comm.Comm, b *LocalBasis,
	fine *distributed.Matrix,
) (*distributed.Matrix, error) {
	return computeRestriction(ctx, defaultTelemetry(), c, b, fine)
}

func computeRestriction(
	ctx context.Context, t *telemetry, c *comm.Comm, b *LocalBasis,
	fine *distributed.Matrix,
) (r *distributed.Matrix, err error) {
	ctx, span := t.start(ctx, "ComputeRestriction", c.Rank())
	defer func() { endSpan(span, err) }()
	report := layoutReport{Rows: b.NumRows()}
	if err = b.Validate(); err != nil {
		report.Invariant = err.Error()
	} else if b.DiagElements == nil {
		report.Invariant = "weights not computed"
	} else if err = checkLayout(c, b, fine); err != nil {
		report.Layout = err.Error()
	}
	reports, err := comm.AllGather(ctx, c, report)
	if err != nil {
		return nil, errors.Wrap(err, "cannot exchange row counts")
	}
	rowCounts := make([]int, len(reports))
	for rank, report := range reports {
		switch {
		case report.Invariant != "":
			return nil, invariantf("rank %d: %s", rank, report.Invariant)
		case report.Layout != "":
			return nil, errors.Wrapf(ErrLayoutMismatch, "rank %d: %s",
				rank, report.Layout)
		}
		rowCounts[rank] = report.Rows
	}
	rows, err := index.NewPartition(rowCounts)
	if err != nil {
		return nil, invariantf("coarse row partition: %v", err)
	}
	rowOffset := rows.Range(c.Rank()).Begin
	r, err = distributed.NewMatrix(c, rows, fine.ColumnPartition())
	if err != nil {
		return nil, err
	}
	for i, dofs := range b.DoFIndicesMaps {
		for j, dof := range dofs {
			value := b.DiagElements[i][j] * b.Eigenvectors[i][j]
			if err = r.Set(rowOffset+i, dof, value); err != nil {
				return nil, invariantf("row %d slot %d: %v", i, j, err)
			}
		}
	}
	if err = r.Compress(ctx); err != nil {
		return nil, errors.Wrap(err, "cannot compress restriction matrix")
	}
	t.coarseRows.Add(ctx, int64(b.NumRows()), rankAttr(c.Rank()))
	zerolog.Ctx(ctx).Debug().
		Int("rowOffset", rowOffset).
		Int("localRows", b.NumRows()).
		Int("coarseRows", rows.Total()).
		Int("nnz", r.LocalNNZ()).
		Msg("assembled restriction matrix")
	return r, nil
}

// checkLayout returns why the fine operator's layout cannot host the
// local basis, or nil.
func checkLayout(c *comm.Comm, b *LocalBasis, fine *distributed.Matrix) error {
	if !fine.IsCompressed() {
		return errors.New("fine operator is not compressed")
	}
	fc := fine.Comm()
	if !fc.SameWorld(c) || fc.Rank() != c.Rank() {
		return errors.Errorf("fine operator lives on %s, not on %s of this world",
			fc, c)
	}
	_, cols := fine.Dims()
	for i, dofs := range b.DoFIndicesMaps {
		for _, dof := range dofs {
			if dof < 0 || dof >= cols {
				return errors.Errorf("row %d refers to DoF %d outside [0, %d)",
					i, dof, cols)
			}
		}
	}
	return nil
}
