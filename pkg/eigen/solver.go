// Package eigen solves the small dense symmetric eigenproblems
// that arise on agglomerates.
package eigen

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is returned when no eigenpair could be obtained.
var ErrNoConvergence = errors.New("eigensolver did not converge")

// Result holds the eigenpairs obtained by a Solver,
// in ascending eigenvalue order.
type Result struct {
	// Values are the eigenvalues.
	Values []float64

	// Vectors[k] is the eigenvector of Values[k],
	// with one coefficient per row of the operator.
	Vectors [][]float64

	// Converged is the number of eigenpairs obtained.
	// It may be less than the number requested.
	Converged int
}

// Solver computes the smallest eigenpairs of A x = λ M x,
// where M is diagonal.
type Solver interface {
	// Solve returns up to count eigenpairs whose residual is within tol.
	// mass holds the diagonal of M; nil means M = I.
	Solve(
		ctx context.Context, a mat.Symmetric, mass []float64,
		count int, tol float64,
	) (*Result, error)
}

// DenseSolver is a Solver that factorizes the whole operator.
// Suitable for agglomerate-sized problems.
type DenseSolver struct{}

// Solve implements Solver.
//
// Eigenpairs are accepted in ascending eigenvalue order while
// ‖A x − λ M x‖₂ ≤ tol·max(1, ‖A‖∞) holds; the first rejected pair ends
// the result.  Each eigenvector is M-normalized, with its largest-magnitude
// coefficient positive.
func (DenseSolver) Solve(
	ctx context.Context, a mat.Symmetric, mass []float64,
	count int, tol float64,
) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := a.SymmetricDim()
	switch {
	case n == 0:
		return nil, errors.Wrap(ErrNoConvergence, "empty operator")
	case count < 1:
		return nil, errors.Errorf("invalid eigenpair count %d", count)
	case mass != nil && len(mass) != n:
		return nil, errors.Errorf("mass has %d elements, want %d", len(mass), n)
	}
	scale, err := massScale(mass, n)
	if err != nil {
		return nil, err
	}
	scaled := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			scaled.SetSym(i, j, a.At(i, j)*scale[i]*scale[j])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(scaled, true); !ok {
		return nil, errors.Wrap(ErrNoConvergence, "factorization failed")
	}
	values := eig.Values(nil)
	vectors := mat.NewDense(n, n, nil)
	eig.VectorsTo(vectors)

	bound := tol * max(1, mat.Norm(scaled, math.Inf(1)))
	count = min(count, n)
	result := &Result{}
	logger := zerolog.Ctx(ctx)
	w := make([]float64, n)
	for k := 0; k < count; k++ {
		mat.Col(w, k, vectors)
		residual := residualNorm(scaled, w, values[k])
		if residual > bound {
			logger.Trace().
				Int("pair", k).
				Float64("eigenvalue", values[k]).
				Float64("residual", residual).
				Float64("bound", bound).
				Msg("eigenpair rejected")
			break
		}
		v := make([]float64, n)
		floats.MulTo(v, w, scale)
		normalizeSign(v)
		result.Values = append(result.Values, values[k])
		result.Vectors = append(result.Vectors, v)
		result.Converged++
	}
	if result.Converged == 0 {
		return nil, errors.Wrapf(ErrNoConvergence,
			"smallest eigenpair residual exceeds %g", bound)
	}
	return result, nil
}

// massScale returns the diagonal of M^(-1/2).
func massScale(mass []float64, n int) ([]float64, error) {
	scale := make([]float64, n)
	if mass == nil {
		floats.AddConst(1, scale)
		return scale, nil
	}
	for i, m := range mass {
		if !(m > 0) {
			return nil, errors.Errorf("mass[%d] = %g is not positive", i, m)
		}
		scale[i] = 1 / math.Sqrt(m)
	}
	return scale, nil
}

func residualNorm(a mat.Symmetric, x []float64, lambda float64) float64 {
	xv := mat.NewVecDense(len(x), x)
	var r mat.VecDense
	r.MulVec(a, xv)
	r.AddScaledVec(&r, -lambda, xv)
	return mat.Norm(&r, 2)
}

func normalizeSign(v []float64) {
	largest := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[largest]) {
			largest = i
		}
	}
	if v[largest] < 0 {
		floats.Scale(-1, v)
	}
}
