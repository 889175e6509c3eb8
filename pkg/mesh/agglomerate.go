package mesh

import (
	"sort"

	"github.com/pkg/errors"
)

// Agglomerate is a group of cells processed as one local eigenproblem.
type Agglomerate struct {
	// ID identifies the agglomerate globally.
	ID int

	// Cells are the global ids of member cells, sorted.
	Cells []int

	// DoFs are the global DoFs touching member cells, sorted.
	DoFs []int
}

// BlockAgglomerator groups the owned cells of a HyperCube into blocks
// of shape[d] cells along axis d.
//
// Blocks are aligned to the mesh origin on all axes but the last,
// where they are aligned to the bottom of the owned slab, so no block
// straddles two ranks.  Blocks at the upper edges may be partial.
// An agglomerate's ID is the id of its lowest cell.
type BlockAgglomerator struct {
	Mesh *HyperCube
}

// Dim returns the mesh dimension, i.e. the expected shape length.
func (a BlockAgglomerator) Dim() int { return a.Mesh.Dim() }

// Agglomerate groups the owned cells; see BlockAgglomerator.
func (a BlockAgglomerator) Agglomerate(shape []int) ([]Agglomerate, error) {
	m := a.Mesh
	if len(shape) != m.Dim() {
		return nil, errors.Errorf("agglomerate shape %v has %d axes, want %d",
			shape, len(shape), m.Dim())
	}
	for d, s := range shape {
		if s < 1 {
			return nil, errors.Errorf("agglomerate shape %v: axis %d is %d",
				shape, d, s)
		}
	}
	slab := m.OwnedLayers()
	last := m.Dim() - 1
	blocks := make(map[int][]int) // block key -> cells
	owned := m.OwnedCells()
	block := make([]int, m.Dim())
	for cell := owned.Begin; cell < owned.End; cell++ {
		coords := m.CellCoords(cell)
		for d := range block {
			block[d] = coords[d] / shape[d]
		}
		block[last] = (coords[last] - slab.Begin) / shape[last]
		key := encode(block, m.CellsPerAxis())
		blocks[key] = append(blocks[key], cell)
	}
	agglomerates := make([]Agglomerate, 0, len(blocks))
	for _, cells := range blocks {
		// cells were visited in ascending order
		agglomerates = append(agglomerates, Agglomerate{
			ID:    cells[0],
			Cells: cells,
			DoFs:  m.DoFsOfCells(cells),
		})
	}
	sort.Slice(agglomerates, func(i, j int) bool {
		return agglomerates[i].ID < agglomerates[j].ID
	})
	return agglomerates, nil
}
