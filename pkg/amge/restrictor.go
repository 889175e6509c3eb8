// Package amge builds the restriction operator of one element-agglomeration
// algebraic multigrid (AMGe) coarsening step.
//
// A Restrictor agglomerates the mesh cells of each rank, solves a small
// eigenproblem on each agglomerate, and turns the eigenvectors into the
// rows of a distributed restriction matrix, weighted so that the
// contributions to every shared fine DoF form a partition of unity.
package amge

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/distributed"
	"k3l.io/go-amge/pkg/eigen"
	"k3l.io/go-amge/pkg/mesh"
	"k3l.io/go-amge/pkg/util"
)

// MeshEvaluator discretizes an operator on a mesh.
type MeshEvaluator interface {
	// GlobalOperator assembles the fine-level operator.  Collective.
	GlobalOperator(ctx context.Context, c *comm.Comm) (*distributed.Matrix, error)

	// LocalOperator returns the operator restricted to an agglomerate,
	// over agg.DoFs in that order, and optionally the diagonal of its
	// mass matrix (nil for identity).
	LocalOperator(ctx context.Context, agg mesh.Agglomerate) (*mat.SymDense, []float64, error)
}

// Agglomerator groups the locally owned cells into agglomerates.
type Agglomerator interface {
	Agglomerate(shape []int) ([]mesh.Agglomerate, error)
}

// Result is the outcome of a restrictor build on one rank.
type Result struct {
	// Matrix is the compressed restriction matrix.
	Matrix *distributed.Matrix

	// Agglomerates are the IDs of the local agglomerates, in row order.
	Agglomerates []int

	// NumLocalEigenvectors[a] is the number of eigenvectors obtained
	// for Agglomerates[a], which is also its number of coarse rows.
	NumLocalEigenvectors []int

	// Eigenvalues[a] are the eigenvalues of Agglomerates[a].
	Eigenvalues [][]float64

	// Basis is the weighted local basis the matrix was assembled from.
	Basis *LocalBasis
}

// RestrictorOpts contains options for NewRestrictor.
type RestrictorOpts struct {
	solver         eigen.Solver
	maxConcurrency int
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	timer          func() time.Time
}

// RestrictorOpt is one NewRestrictor option.
type RestrictorOpt func(*RestrictorOpts)

// WithSolver tells the restrictor to use the given local eigensolver
// instead of eigen.DenseSolver.
func WithSolver(solver eigen.Solver) RestrictorOpt {
	return func(o *RestrictorOpts) { o.solver = solver }
}

// WithMaxConcurrency limits the number of agglomerate eigensolves
// running at the same time on one rank.  Default: GOMAXPROCS.
func WithMaxConcurrency(n int) RestrictorOpt {
	return func(o *RestrictorOpts) { o.maxConcurrency = n }
}

// WithTracerProvider sets the tracer provider; default: the global one.
func WithTracerProvider(tp trace.TracerProvider) RestrictorOpt {
	return func(o *RestrictorOpts) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider; default: the global one.
func WithMeterProvider(mp metric.MeterProvider) RestrictorOpt {
	return func(o *RestrictorOpts) { o.meterProvider = mp }
}

// WithTimer sets the clock used to time build phases.
func WithTimer(timer func() time.Time) RestrictorOpt {
	return func(o *RestrictorOpts) { o.timer = timer }
}

// Restrictor builds restriction matrices for one rank of a world.
type Restrictor struct {
	comm           *comm.Comm
	solver         eigen.Solver
	maxConcurrency int
	timer          func() time.Time
	telemetry      *telemetry
}

// NewRestrictor returns a restrictor running on the given rank.
func NewRestrictor(c *comm.Comm, opts ...RestrictorOpt) (*Restrictor, error) {
	o := RestrictorOpts{
		solver:         eigen.DenseSolver{},
		maxConcurrency: runtime.GOMAXPROCS(0),
		timer:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxConcurrency < 1 {
		return nil, errors.Errorf("invalid max concurrency %d", o.maxConcurrency)
	}
	t, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, err
	}
	return &Restrictor{
		comm:           c,
		solver:         o.solver,
		maxConcurrency: o.maxConcurrency,
		timer:          o.timer,
		telemetry:      t,
	}, nil
}

// Setup builds the restriction matrix.  Collective.
//
// fine is the fine-level operator; if nil, Setup obtains it from the
// evaluator.  The restriction matrix has fine's column layout.
//
// An agglomerate whose eigensolve fails aborts the build with a
// *SolverError naming it.  An agglomerate yielding fewer eigenpairs than
// requested contributes fewer coarse rows, as recorded in
// Result.NumLocalEigenvectors.
func (r *Restrictor) Setup(
	ctx context.Context, cfg *Config, agglomerator Agglomerator,
	evaluator MeshEvaluator, fine *distributed.Matrix,
) (result *Result, err error) {
	rank := r.comm.Rank()
	ctx, span := r.telemetry.start(ctx, "Restrictor.Setup", rank)
	defer func() { endSpan(span, err) }()
	logger := zerolog.Ctx(ctx)
	tm := util.NewTimeLogger(r.timer, *logger)

	dim := 0
	if dimensioned, ok := agglomerator.(interface{ Dim() int }); ok {
		dim = dimensioned.Dim()
	}
	if err = cfg.Validate(dim); err != nil {
		return nil, err
	}
	if fine == nil {
		if fine, err = evaluator.GlobalOperator(ctx, r.comm); err != nil {
			return nil, errors.Wrap(err, "cannot evaluate fine operator")
		}
		tm.Log("fine operator")
	}
	aggs, err := agglomerator.Agglomerate(cfg.AgglomerateShape)
	if err != nil {
		return nil, errors.Wrap(err, "cannot agglomerate")
	}
	tm.Log("agglomerate")
	bases, eigenvalues, err := r.solveAll(ctx, cfg, aggs, evaluator)
	if err != nil {
		return nil, err
	}
	tm.Log("eigensolve")
	b, err := CollectLocalBasis(bases)
	if err != nil {
		return nil, err
	}
	if err = ComputeWeights(ctx, r.comm, fine.ColumnPartition(), b); err != nil {
		return nil, err
	}
	tm.Log("weights")
	m, err := computeRestriction(ctx, r.telemetry, r.comm, b, fine)
	if err != nil {
		return nil, err
	}
	tm.Log("assemble")
	result = &Result{
		Matrix:               m,
		Agglomerates:         make([]int, len(aggs)),
		NumLocalEigenvectors: b.NumLocalEigenvectors,
		Eigenvalues:          eigenvalues,
		Basis:                b,
	}
	for a, agg := range aggs {
		result.Agglomerates[a] = agg.ID
	}
	logger.Debug().
		Int("agglomerates", len(aggs)).
		Int("coarseRows", b.NumRows()).
		Dur("total", tm.Total()).
		Msg("restrictor setup done")
	return result, nil
}

// solveAll runs the agglomerate eigensolves concurrently;
// results are kept in agglomerate order.
func (r *Restrictor) solveAll(
	ctx context.Context, cfg *Config, aggs []mesh.Agglomerate,
	evaluator MeshEvaluator,
) ([]AgglomerateBasis, [][]float64, error) {
	rank := r.comm.Rank()
	bases := make([]AgglomerateBasis, len(aggs))
	eigenvalues := make([][]float64, len(aggs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.maxConcurrency)
	for a, agg := range aggs {
		eg.Go(func() error {
			a0, mass, err := evaluator.LocalOperator(egCtx, agg)
			if err != nil {
				return errors.Wrapf(err,
					"cannot evaluate local operator of agglomerate %d", agg.ID)
			}
			solved, err := r.solver.Solve(egCtx, a0, mass,
				cfg.NumEigenvectors, cfg.EigenTolerance)
			if err != nil {
				return &SolverError{Agglomerate: agg.ID, Err: err}
			}
			if solved.Converged < 0 || solved.Converged > len(solved.Vectors) ||
				solved.Converged > len(solved.Values) {
				return invariantf("agglomerate %d: solver reported %d of %d vectors",
					agg.ID, solved.Converged, len(solved.Vectors))
			}
			if solved.Converged < cfg.NumEigenvectors {
				r.telemetry.truncated.Add(egCtx, 1, rankAttr(rank))
				zerolog.Ctx(egCtx).Debug().
					Int("agglomerate", agg.ID).
					Int("requested", cfg.NumEigenvectors).
					Int("obtained", solved.Converged).
					Msg("fewer eigenvectors than requested")
			}
			bases[a] = AgglomerateBasis{
				Agglomerate:  agg.ID,
				DoFs:         agg.DoFs,
				Eigenvectors: solved.Vectors[:solved.Converged],
			}
			eigenvalues[a] = solved.Values[:solved.Converged]
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	r.telemetry.agglomerates.Add(ctx, int64(len(aggs)), rankAttr(rank))
	return bases, eigenvalues, nil
}
