package mesh

import (
	"context"

	"github.com/james-bowman/sparse"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/distributed"
	"k3l.io/go-amge/pkg/index"
)

// LaplaceEvaluator discretizes the Laplace operator with Q1 elements.
type LaplaceEvaluator struct {
	Mesh *HyperCube
}

// GlobalOperator assembles the fine-level stiffness matrix.  Collective.
//
// Rows of DoFs on the bottom of a slab belong to the rank below;
// their contributions are added there during compression.
func (e LaplaceEvaluator) GlobalOperator(
	ctx context.Context, c *comm.Comm,
) (*distributed.Matrix, error) {
	m := e.Mesh
	a, err := distributed.NewMatrix(c, m.DoFPartition(), m.DoFPartition())
	if err != nil {
		return nil, err
	}
	k := q1Stiffness(m.Dim(), m.CellSize())
	owned := m.OwnedCells()
	for cell := owned.Begin; cell < owned.End; cell++ {
		dofs := m.CellDoFs(cell)
		for i, row := range dofs {
			for j, col := range dofs {
				if err = a.Add(row, col, k[i][j]); err != nil {
					return nil, errors.Wrapf(err, "cell %d", cell)
				}
			}
		}
	}
	if err = a.Compress(ctx); err != nil {
		return nil, errors.Wrap(err, "cannot compress Laplace operator")
	}
	zerolog.Ctx(ctx).Debug().
		Int("cells", owned.Len()).
		Int("nnz", a.LocalNNZ()).
		Msg("assembled Laplace operator")
	return a, nil
}

// LocalOperator assembles the Neumann stiffness matrix of an agglomerate,
// over its DoFs in the order of agg.DoFs.  No mass matrix is used.
func (e LaplaceEvaluator) LocalOperator(
	ctx context.Context, agg Agglomerate,
) (*mat.SymDense, []float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	m := e.Mesh
	local := index.MapWithGlobals(agg.DoFs...)
	n := local.Len()
	if n != len(agg.DoFs) {
		return nil, nil, errors.Errorf("agglomerate %d has duplicate DoFs",
			agg.ID)
	}
	k := q1Stiffness(m.Dim(), m.CellSize())
	dok := sparse.NewDOK(n, n)
	for _, cell := range agg.Cells {
		dofs := m.CellDoFs(cell)
		for i, row := range dofs {
			li, ok := local.Local(row)
			if !ok {
				return nil, nil, errors.Errorf(
					"agglomerate %d: cell %d DoF %d not listed",
					agg.ID, cell, row)
			}
			for j, col := range dofs {
				lj, _ := local.Local(col)
				dok.Set(li, lj, dok.At(li, lj)+k[i][j])
			}
		}
	}
	return symmetrize(dok.ToDense()), nil, nil
}

// symmetrize copies the upper triangle of a into a symmetric matrix.
func symmetrize(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, a.At(i, j))
		}
	}
	return s
}

// IdentityEvaluator yields identity operators.
// The eigenvectors of its local operators are unit vectors.
type IdentityEvaluator struct {
	Mesh *HyperCube
}

// GlobalOperator assembles the identity over the mesh DoFs.  Collective.
func (e IdentityEvaluator) GlobalOperator(
	ctx context.Context, c *comm.Comm,
) (*distributed.Matrix, error) {
	return IdentityOperator(ctx, c, e.Mesh.DoFPartition())
}

// LocalOperator returns the identity over the agglomerate's DoFs.
func (e IdentityEvaluator) LocalOperator(
	ctx context.Context, agg Agglomerate,
) (*mat.SymDense, []float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	n := len(agg.DoFs)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
	}
	return s, nil, nil
}

// IdentityOperator assembles the identity matrix distributed per the
// given partition.  Collective.
func IdentityOperator(
	ctx context.Context, c *comm.Comm, layout *index.Partition,
) (*distributed.Matrix, error) {
	a, err := distributed.NewMatrix(c, layout, layout)
	if err != nil {
		return nil, err
	}
	owned := layout.Range(c.Rank())
	for i := owned.Begin; i < owned.End; i++ {
		if err = a.Set(i, i, 1); err != nil {
			return nil, err
		}
	}
	if err = a.Compress(ctx); err != nil {
		return nil, err
	}
	return a, nil
}
