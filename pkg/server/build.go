// Package server runs restriction builds on an in-process world of ranks
// and serves them over HTTP.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/amge"
	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/mesh"
	"k3l.io/go-amge/pkg/sparse"
	"k3l.io/go-amge/pkg/util"
)

// Evaluator names.
const (
	EvaluatorLaplace  = "laplace"
	EvaluatorIdentity = "identity"
)

// Limits on a single build.
const (
	// MaxRanks is the largest number of ranks of a build.
	MaxRanks = 64

	// MaxDoFs is the largest number of fine DoFs of a build's mesh.
	MaxDoFs = 1 << 22

	// MaxAgglomerateCells is the largest number of cells of one
	// agglomerate, which bounds the size of its dense eigenproblem.
	MaxAgglomerateCells = 1024
)

// Request describes one restriction build.
type Request struct {
	// Dim is the mesh dimension, 1 to 3.
	Dim int

	// Refinements is the number of uniform refinements of the unit
	// hypercube; the mesh has 2^Refinements cells per axis.
	Refinements int

	// Ranks is the number of ranks the build runs on,
	// at most MaxRanks and at most 2^Refinements.
	Ranks int

	// Evaluator is EvaluatorLaplace (default) or EvaluatorIdentity.
	Evaluator string

	// Config holds the restrictor parameters; nil means
	// amge.DefaultConfig(Dim).
	Config *amge.Config

	// Verify requests a partition-of-unity check of the weights.
	Verify bool
}

// Restriction is a completed build.
type Restriction struct {
	// Matrix is the gathered restriction matrix.
	Matrix *sparse.CSRMatrix

	// Agglomerates is the total number of agglomerates.
	Agglomerates int

	// Truncated is the number of agglomerates that yielded fewer
	// eigenvectors than requested.
	Truncated int

	// Verified tells whether Deviation was computed.
	Verified bool

	// Deviation is the largest deviation from 1 of the weight sum of a
	// fine DoF; only set if Verified.
	Deviation float64

	Elapsed time.Duration
}

func (req *Request) validate() error {
	switch {
	case req.Ranks < 1 || req.Ranks > MaxRanks:
		return &amge.ConfigError{
			Field:  "ranks",
			Reason: fmt.Sprintf("%d is not in [1, %d]", req.Ranks, MaxRanks),
		}
	case req.Evaluator != "" && req.Evaluator != EvaluatorLaplace &&
		req.Evaluator != EvaluatorIdentity:
		return &amge.ConfigError{
			Field:  "evaluator",
			Reason: "unknown evaluator " + req.Evaluator,
		}
	case req.Dim < 1 || req.Dim > 3:
		return &amge.ConfigError{
			Field:  "dim",
			Reason: fmt.Sprintf("%d is not in [1, 3]", req.Dim),
		}
	case req.Refinements < 0 || req.Refinements > 12:
		return &amge.ConfigError{
			Field:  "refinements",
			Reason: fmt.Sprintf("%d is not in [0, 12]", req.Refinements),
		}
	}
	cells := 1 << req.Refinements
	if req.Ranks > cells {
		return &amge.ConfigError{
			Field:  "ranks",
			Reason: fmt.Sprintf("%d ranks for %d cell layers", req.Ranks, cells),
		}
	}
	dofs := 1
	for d := 0; d < req.Dim; d++ {
		dofs *= cells + 1
	}
	if dofs > MaxDoFs {
		return &amge.ConfigError{
			Field:  "refinements",
			Reason: fmt.Sprintf("%d DoFs exceed %d", dofs, MaxDoFs),
		}
	}
	cfg := req.Config
	if cfg == nil {
		cfg = amge.DefaultConfig(req.Dim)
	}
	if err := cfg.Validate(req.Dim); err != nil {
		return err
	}
	aggCells := 1
	for _, n := range cfg.AgglomerateShape {
		aggCells *= min(n, cells)
	}
	if aggCells > MaxAgglomerateCells {
		return &amge.ConfigError{
			Field: "agglomerate_shape",
			Reason: fmt.Sprintf("%d cells per agglomerate exceed %d",
				aggCells, MaxAgglomerateCells),
		}
	}
	return nil
}

// Build runs the restriction build on a new world of req.Ranks ranks,
// and gathers the result.
func Build(ctx context.Context, req *Request) (*Restriction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cfg := amge.DefaultConfig(req.Dim)
	if req.Config != nil {
		cfg = req.Config.Clone()
	}
	logger := zerolog.Ctx(ctx)
	tm := util.NewWallTimeLogger(*logger)
	type rankStats struct {
		agglomerates, truncated int
	}
	stats := make([]rankStats, req.Ranks)
	var (
		gathered  *sparse.CSRMatrix
		deviation float64
	)
	err := comm.Run(ctx, req.Ranks, func(ctx context.Context, c *comm.Comm) error {
		m, err := mesh.NewHyperCube(req.Dim, req.Refinements, c)
		if err != nil {
			return &amge.ConfigError{Field: "mesh", Reason: err.Error()}
		}
		var evaluator amge.MeshEvaluator = mesh.LaplaceEvaluator{Mesh: m}
		if req.Evaluator == EvaluatorIdentity {
			evaluator = mesh.IdentityEvaluator{Mesh: m}
		}
		r, err := amge.NewRestrictor(c)
		if err != nil {
			return err
		}
		result, err := r.Setup(ctx, cfg, mesh.BlockAgglomerator{Mesh: m},
			evaluator, nil)
		if err != nil {
			return err
		}
		s := &stats[c.Rank()]
		s.agglomerates = len(result.Agglomerates)
		for _, n := range result.NumLocalEigenvectors {
			if n < cfg.NumEigenvectors {
				s.truncated++
			}
		}
		if req.Verify {
			d, err := amge.CheckPartitionOfUnity(ctx, c,
				result.Matrix.ColumnPartition(), result.Basis)
			if err != nil {
				return errors.Wrap(err, "partition-of-unity check failed")
			}
			if c.Rank() == 0 {
				deviation = d
			}
		}
		matrix, err := result.Matrix.Gather(ctx)
		if err != nil {
			return errors.Wrap(err, "cannot gather restriction matrix")
		}
		if c.Rank() == 0 {
			gathered = matrix
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tm.Log("build")
	restriction := &Restriction{
		Matrix:    gathered,
		Verified:  req.Verify,
		Deviation: deviation,
		Elapsed:   tm.Total(),
	}
	for _, s := range stats {
		restriction.Agglomerates += s.agglomerates
		restriction.Truncated += s.truncated
	}
	rows, cols := gathered.Dims()
	logger.Info().
		Int("ranks", req.Ranks).
		Int("rows", rows).
		Int("cols", cols).
		Int("nnz", gathered.NNZ()).
		Int("agglomerates", restriction.Agglomerates).
		Int("truncated", restriction.Truncated).
		Float64("deviation", restriction.Deviation).
		Msg("restriction built")
	return restriction, nil
}
