// Package mesh provides a structured hypercube mesh of Q1 elements,
// distributed across ranks, with the agglomeration and operator
// evaluation needed to build AMGe restriction operators on it.
package mesh

import (
	"slices"

	"github.com/pkg/errors"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
)

// HyperCube is the unit hypercube [0,1]^dim split into 2^refinements
// cells per axis, with one DoF per vertex.
//
// Cells and vertices are numbered lexicographically with the first axis
// running fastest.  Cells are distributed in slabs of whole layers along
// the last axis; a vertex belongs to the rank owning the cell layer just
// above it, and the top vertex layer belongs to the rank owning the top
// cell layer, so every rank owns one contiguous DoF range.
type HyperCube struct {
	comm   *comm.Comm
	dim    int
	cells  int // per axis
	layers *index.Partition
	dofs   *index.Partition
}

// NewHyperCube returns the hypercube mesh distributed over c.
func NewHyperCube(dim, refinements int, c *comm.Comm) (*HyperCube, error) {
	switch {
	case dim < 1 || dim > 3:
		return nil, errors.Errorf("unsupported dimension %d", dim)
	case refinements < 0 || refinements > 12:
		return nil, errors.Errorf("unsupported refinement level %d", refinements)
	}
	cells := 1 << refinements
	layers := index.EvenPartition(cells, c.Size())
	vertexLayer := pow(cells+1, dim-1)
	sizes := layers.Sizes()
	// the top vertex layer goes with the top cell layer
	top, err := layers.Owner(cells - 1)
	if err != nil {
		return nil, err
	}
	sizes[top]++
	for rank := range sizes {
		sizes[rank] *= vertexLayer
	}
	dofs, err := index.NewPartition(sizes)
	if err != nil {
		return nil, err
	}
	return &HyperCube{
		comm:   c,
		dim:    dim,
		cells:  cells,
		layers: layers,
		dofs:   dofs,
	}, nil
}

// Comm returns the communicator the mesh is distributed over.
func (m *HyperCube) Comm() *comm.Comm { return m.comm }

// Dim returns the spatial dimension.
func (m *HyperCube) Dim() int { return m.dim }

// CellsPerAxis returns the number of cells along each axis.
func (m *HyperCube) CellsPerAxis() int { return m.cells }

// CellSize returns the edge length of a cell.
func (m *HyperCube) CellSize() float64 { return 1 / float64(m.cells) }

// NumCells returns the global number of cells.
func (m *HyperCube) NumCells() int { return pow(m.cells, m.dim) }

// NumDoFs returns the global number of DoFs.
func (m *HyperCube) NumDoFs() int { return pow(m.cells+1, m.dim) }

// DoFPartition returns the per-rank ranges of owned DoFs.
func (m *HyperCube) DoFPartition() *index.Partition { return m.dofs }

// OwnedDoFs returns the DoF range owned by this rank.
func (m *HyperCube) OwnedDoFs() index.Range { return m.dofs.Range(m.comm.Rank()) }

// OwnedCells returns the global ids of the cells owned by this rank.
func (m *HyperCube) OwnedCells() index.Range {
	layer := pow(m.cells, m.dim-1)
	layers := m.layers.Range(m.comm.Rank())
	return index.Range{Begin: layers.Begin * layer, End: layers.End * layer}
}

// OwnedLayers returns the range of cell layers (along the last axis)
// owned by this rank.
func (m *HyperCube) OwnedLayers() index.Range { return m.layers.Range(m.comm.Rank()) }

// CellCoords returns the per-axis integer coordinates of a cell.
func (m *HyperCube) CellCoords(cell int) []int {
	return decode(cell, m.cells, m.dim)
}

// CellID returns the cell at the given per-axis integer coordinates.
func (m *HyperCube) CellID(coords []int) int {
	return encode(coords, m.cells)
}

// CellDoFs returns the DoFs of a cell's 2^dim vertices.
//
// Local vertex v sits at cell coordinates plus bit d of v along axis d.
func (m *HyperCube) CellDoFs(cell int) []int {
	coords := m.CellCoords(cell)
	vertex := make([]int, m.dim)
	dofs := make([]int, 1<<m.dim)
	for v := range dofs {
		for d := range vertex {
			vertex[d] = coords[d] + (v>>d)&1
		}
		dofs[v] = encode(vertex, m.cells+1)
	}
	return dofs
}

// LocallyRelevantDoFs returns the DoFs of all owned cells,
// which include some DoFs owned by the rank below.
func (m *HyperCube) LocallyRelevantDoFs() *index.Set {
	set := index.NewSet()
	owned := m.OwnedCells()
	for cell := owned.Begin; cell < owned.End; cell++ {
		set.Add(m.CellDoFs(cell)...)
	}
	return set
}

// DoFsOfCells returns the sorted union of the DoFs of the given cells.
func (m *HyperCube) DoFsOfCells(cells []int) []int {
	var dofs []int
	for _, cell := range cells {
		dofs = append(dofs, m.CellDoFs(cell)...)
	}
	slices.Sort(dofs)
	return slices.Compact(dofs)
}

func pow(base, exp int) int {
	result := 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

func encode(coords []int, n int) int {
	id := 0
	for d := len(coords) - 1; d >= 0; d-- {
		id = id*n + coords[d]
	}
	return id
}

func decode(id, n, dim int) []int {
	coords := make([]int, dim)
	for d := range coords {
		coords[d] = id % n
		id /= n
	}
	return coords
}
