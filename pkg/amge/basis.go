package amge

import (
	"slices"

	"k3l.io/go-amge/pkg/util"
)

// LocalBasis holds the local eigenvector basis of all agglomerates on a
// rank, as parallel tables indexed by local row.
//
// One local row is one eigenvector of one agglomerate, and becomes one
// coarse row of the restriction matrix.  Slot j of row i refers to the fine
// DoF DoFIndicesMaps[i][j].  Rows of one agglomerate are contiguous,
// in eigenvalue order.
type LocalBasis struct {
	// Eigenvectors[i][j] is the eigenvector coefficient of slot j.
	Eigenvectors [][]float64

	// DoFIndicesMaps[i][j] is the fine DoF (global column) of slot j.
	DoFIndicesMaps [][]int

	// DiagElements[i][j] is the partition-of-unity weight of slot j;
	// nil until ComputeWeights fills it.
	DiagElements [][]float64

	// NumLocalEigenvectors[a] is the number of rows of agglomerate a.
	NumLocalEigenvectors []int
}

// AgglomerateBasis is the result of the local eigensolve on one
// agglomerate.
type AgglomerateBasis struct {
	// Agglomerate is the agglomerate ID.
	Agglomerate int

	// DoFs are the fine DoFs of the agglomerate.
	DoFs []int

	// Eigenvectors[k][j] is the coefficient of eigenvector k at DoFs[j].
	// It may be empty.
	Eigenvectors [][]float64
}

// CollectLocalBasis lays out the given agglomerate bases as local rows,
// in the given agglomerate order.
//
// A DoF shared by several agglomerates appears in a row of each of them;
// rows are never merged.
func CollectLocalBasis(bases []AgglomerateBasis) (*LocalBasis, error) {
	b := &LocalBasis{
		NumLocalEigenvectors: make([]int, 0, len(bases)),
	}
	for _, agg := range bases {
		if err := checkNoDuplicates(agg.DoFs); err != nil {
			return nil, invariantf("agglomerate %d: %v", agg.Agglomerate, err)
		}
		for k, vector := range agg.Eigenvectors {
			if len(vector) != len(agg.DoFs) {
				return nil, invariantf(
					"agglomerate %d: eigenvector %d has %d coefficients for %d DoFs",
					agg.Agglomerate, k, len(vector), len(agg.DoFs))
			}
			b.Eigenvectors = append(b.Eigenvectors, slices.Clone(vector))
			b.DoFIndicesMaps = append(b.DoFIndicesMaps, slices.Clone(agg.DoFs))
		}
		b.NumLocalEigenvectors = append(b.NumLocalEigenvectors,
			len(agg.Eigenvectors))
	}
	return b, nil
}

// NumRows returns the number of local rows.
func (b *LocalBasis) NumRows() int { return len(b.Eigenvectors) }

// Validate checks that the tables agree in shape and that no row
// references a DoF twice.
func (b *LocalBasis) Validate() error {
	rows := len(b.Eigenvectors)
	if len(b.DoFIndicesMaps) != rows {
		return invariantf("%d DoF index maps for %d rows",
			len(b.DoFIndicesMaps), rows)
	}
	if b.DiagElements != nil && len(b.DiagElements) != rows {
		return invariantf("%d weight rows for %d rows",
			len(b.DiagElements), rows)
	}
	for _, n := range b.NumLocalEigenvectors {
		if n < 0 {
			return invariantf("negative eigenvector count %d", n)
		}
	}
	if total := util.Sum(b.NumLocalEigenvectors); total != rows {
		return invariantf("eigenvector counts add up to %d for %d rows",
			total, rows)
	}
	for i := range b.Eigenvectors {
		slots := len(b.DoFIndicesMaps[i])
		if len(b.Eigenvectors[i]) != slots {
			return invariantf("row %d: %d coefficients for %d DoFs",
				i, len(b.Eigenvectors[i]), slots)
		}
		if b.DiagElements != nil && len(b.DiagElements[i]) != slots {
			return invariantf("row %d: %d weights for %d DoFs",
				i, len(b.DiagElements[i]), slots)
		}
		if err := checkNoDuplicates(b.DoFIndicesMaps[i]); err != nil {
			return invariantf("row %d: %v", i, err)
		}
	}
	return nil
}

// DuplicateDoFError reports a DoF listed twice where DoFs must be unique.
type DuplicateDoFError struct {
	DoF int
}

func (e DuplicateDoFError) Error() string {
	return "duplicate DoF " + util.FormatIndex(e.DoF)
}

func checkNoDuplicates(dofs []int) error {
	seen := make(map[int]struct{}, len(dofs))
	for _, dof := range dofs {
		if _, ok := seen[dof]; ok {
			return DuplicateDoFError{DoF: dof}
		}
		seen[dof] = struct{}{}
	}
	return nil
}
