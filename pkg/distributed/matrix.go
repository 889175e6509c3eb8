// Package distributed implements sparse matrices and vectors whose rows
// are partitioned across the ranks of a comm.World.
package distributed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/comm"
	"k3l.io/go-amge/pkg/index"
	"k3l.io/go-amge/pkg/sparse"
	spopt "k3l.io/go-amge/pkg/sparse/option"
	"k3l.io/go-amge/pkg/util"
)

// WriteMode tells how writes to the same location combine.
type WriteMode int

const (
	// NoWrites means no write has been issued yet.
	NoWrites WriteMode = iota
	// Insert writes overwrite each other; the last one wins.
	Insert
	// Add writes accumulate.
	Add
)

func (m WriteMode) String() string {
	switch m {
	case Insert:
		return "insert"
	case Add:
		return "add"
	default:
		return "none"
	}
}

// Matrix is a sparse matrix whose rows are distributed across ranks.
//
// Rank r stores the rows of rows.Range(r) with all their columns.
// Columns are partitioned too, by the column partition,
// which is the layout of the vectors the matrix multiplies.
//
// A Matrix is assembled in two phases.  First, every rank writes entries
// with Set or Add, to any row, owned or not.  Then all ranks call Compress
// exactly once, which routes off-rank writes to their owners and freezes
// the matrix.  Multiplication and queries need a compressed matrix.
type Matrix struct {
	comm       *comm.Comm
	rows, cols *index.Partition
	ownedRows  index.Range

	mode    WriteMode
	pending [][]sparse.CooEntry // by destination rank

	local *sparse.CSRMatrix // rows shifted by ownedRows.Begin

	// ghost column exchange plan, built by Compress
	ghosts  [][]int // by owner rank; columns this rank reads
	exports [][]int // by reader rank; owned columns others read
}

// NewMatrix returns an empty matrix with the given row and column
// partitions, which must both have one range per rank of c.
func NewMatrix(
	c *comm.Comm, rows, cols *index.Partition,
) (*Matrix, error) {
	if rows.NumRanks() != c.Size() || cols.NumRanks() != c.Size() {
		return nil, errors.Wrapf(ErrLayoutMismatch,
			"%d row ranges and %d column ranges for %d ranks",
			rows.NumRanks(), cols.NumRanks(), c.Size())
	}
	return &Matrix{
		comm:      c,
		rows:      rows,
		cols:      cols,
		ownedRows: rows.Range(c.Rank()),
		pending:   make([][]sparse.CooEntry, c.Size()),
	}, nil
}

// Comm returns the communicator the matrix is distributed over.
func (m *Matrix) Comm() *comm.Comm { return m.comm }

// Dims returns the global numbers of rows/columns.
func (m *Matrix) Dims() (rows, cols int) { return m.rows.Total(), m.cols.Total() }

// RowPartition returns the row layout.
func (m *Matrix) RowPartition() *index.Partition { return m.rows }

// ColumnPartition returns the column (domain) layout.
func (m *Matrix) ColumnPartition() *index.Partition { return m.cols }

// OwnedRows returns the global row range stored on this rank.
func (m *Matrix) OwnedRows() index.Range { return m.ownedRows }

// OwnedColumns returns the global column range owned by this rank
// in the column partition.
func (m *Matrix) OwnedColumns() index.Range { return m.cols.Range(m.comm.Rank()) }

// IsCompressed returns whether Compress has completed.
func (m *Matrix) IsCompressed() bool { return m.local != nil }

// Set writes an entry in insert mode.
func (m *Matrix) Set(row, col int, value float64) error {
	return m.write(Insert, row, col, value)
}

// Add writes an entry in add mode.
func (m *Matrix) Add(row, col int, value float64) error {
	return m.write(Add, row, col, value)
}

func (m *Matrix) write(mode WriteMode, row, col int, value float64) error {
	if m.IsCompressed() {
		return ErrFrozen
	}
	if m.mode != NoWrites && m.mode != mode {
		return errors.Wrapf(ErrWriteModeMismatch,
			"%s write after %s writes", mode, m.mode)
	}
	owner, err := m.rows.Owner(row)
	if err != nil {
		return errors.Wrap(err, "row")
	}
	if col < 0 || col >= m.cols.Total() {
		return errors.Wrap(util.IndexOutOfBoundsError{
			Index: col, Bound: m.cols.Total(),
		}, "column")
	}
	m.mode = mode
	m.pending[owner] = append(m.pending[owner], sparse.CooEntry{
		Row: row, Column: col, Value: value,
	})
	return nil
}

// Compress routes all writes to their owning ranks, combines them per the
// write mode, and freezes the matrix.  Collective.
//
// Explicitly written zeros are kept as stored entries.
// In insert mode, writes to the same location from different ranks are
// resolved in rank order (the highest rank wins); within a rank,
// the last write wins.
func (m *Matrix) Compress(ctx context.Context) error {
	if m.IsCompressed() {
		return ErrFrozen
	}
	logger := zerolog.Ctx(ctx)
	modes, err := comm.AllGather(ctx, m.comm, m.mode)
	if err != nil {
		return err
	}
	mode := NoWrites
	for _, rankMode := range modes {
		switch {
		case rankMode == NoWrites:
		case mode == NoWrites:
			mode = rankMode
		case mode != rankMode:
			return ErrWriteModeMismatch
		}
	}
	received, err := comm.AllToAll(ctx, m.comm, m.pending)
	if err != nil {
		return errors.Wrap(err, "cannot route off-rank writes")
	}
	var entries []sparse.CooEntry
	for _, fromRank := range received {
		for _, e := range fromRank {
			e.Row -= m.ownedRows.Begin
			entries = append(entries, e)
		}
	}
	duplicates := spopt.KeepLastDuplicate
	if mode == Add {
		duplicates = spopt.SumDuplicate
	}
	local, err := sparse.NewCSRMatrixFromEntries(ctx, entries,
		spopt.FixedDim(m.ownedRows.Len(), m.cols.Total()),
		spopt.Signed, duplicates)
	if err != nil {
		return errors.Wrap(err, "cannot build local rows")
	}
	if err = m.planGhosts(ctx, local); err != nil {
		return errors.Wrap(err, "cannot plan ghost exchange")
	}
	m.local = local
	m.pending = nil
	logger.Trace().
		Stringer("mode", mode).
		Int("received", len(entries)).
		Int("nnz", local.NNZ()).
		Msg("compressed")
	return nil
}

// planGhosts finds the off-rank columns referenced by local rows,
// and tells their owners which of their columns to export to this rank.
func (m *Matrix) planGhosts(ctx context.Context, local *sparse.CSRMatrix) error {
	ownedCols := m.OwnedColumns()
	set := index.NewSet()
	for _, span := range local.Entries {
		for _, e := range span {
			if !ownedCols.Contains(e.Index) {
				set.Add(e.Index)
			}
		}
	}
	ghosts := make([][]int, m.comm.Size())
	for _, col := range set.Indices() {
		owner, err := m.cols.Owner(col)
		if err != nil {
			return err
		}
		ghosts[owner] = append(ghosts[owner], col)
	}
	exports, err := comm.AllToAll(ctx, m.comm, ghosts)
	if err != nil {
		return err
	}
	m.ghosts, m.exports = ghosts, exports
	return nil
}

// At returns the entry at the given global location of an owned row.
func (m *Matrix) At(row, col int) (float64, error) {
	if !m.IsCompressed() {
		return 0, ErrNotCompressed
	}
	if !m.ownedRows.Contains(row) {
		return 0, util.IndexOutOfBoundsError{Index: row, Bound: m.ownedRows.End}
	}
	return m.local.At(row-m.ownedRows.Begin, col), nil
}

// RowEntries returns the stored entries of an owned row,
// sorted by column.  The slice aliases the matrix storage.
func (m *Matrix) RowEntries(row int) ([]sparse.Entry, error) {
	if !m.IsCompressed() {
		return nil, ErrNotCompressed
	}
	if !m.ownedRows.Contains(row) {
		return nil, util.IndexOutOfBoundsError{Index: row, Bound: m.ownedRows.End}
	}
	return m.local.Entries[row-m.ownedRows.Begin], nil
}

// LocalNNZ returns the number of entries stored on this rank.
func (m *Matrix) LocalNNZ() int {
	if !m.IsCompressed() {
		return 0
	}
	return m.local.NNZ()
}

// Scale multiplies every stored entry by a.
func (m *Matrix) Scale(a float64) error {
	if !m.IsCompressed() {
		return ErrNotCompressed
	}
	m.local.Scale(a)
	return nil
}

// MulVec returns m*x.  Collective.
//
// x must be distributed per the column partition;
// the result is distributed per the row partition.
func (m *Matrix) MulVec(ctx context.Context, x *Vector) (*Vector, error) {
	if !m.IsCompressed() {
		return nil, ErrNotCompressed
	}
	if !x.layout.Equal(m.cols) {
		return nil, errors.Wrap(ErrLayoutMismatch, "x")
	}
	out := make([][]float64, m.comm.Size())
	for rank, cols := range m.exports {
		out[rank] = make([]float64, len(cols))
		for k, col := range cols {
			out[rank][k] = x.values[col-x.owned.Begin]
		}
	}
	in, err := comm.AllToAll(ctx, m.comm, out)
	if err != nil {
		return nil, errors.Wrap(err, "cannot exchange ghost values")
	}
	entries := make([]sparse.Entry, 0, len(x.values))
	for k, value := range x.values {
		if value != 0 {
			entries = append(entries, sparse.Entry{Index: x.owned.Begin + k, Value: value})
		}
	}
	for rank, cols := range m.ghosts {
		for k, col := range cols {
			if value := in[rank][k]; value != 0 {
				entries = append(entries, sparse.Entry{Index: col, Value: value})
			}
		}
	}
	xLocal := sparse.NewVector(m.cols.Total(), entries)
	var yLocal sparse.Vector
	if err = yLocal.MulVec(ctx, m.local, xLocal); err != nil {
		return nil, err
	}
	y, err := NewVector(m.comm, m.rows)
	if err != nil {
		return nil, err
	}
	for _, e := range yLocal.Entries {
		y.values[e.Index] = e.Value
	}
	return y, nil
}

// TMulVec returns transpose(m)*y.  Collective.
//
// y must be distributed per the row partition;
// the result is distributed per the column partition.
func (m *Matrix) TMulVec(ctx context.Context, y *Vector) (*Vector, error) {
	if !m.IsCompressed() {
		return nil, ErrNotCompressed
	}
	if !y.layout.Equal(m.rows) {
		return nil, errors.Wrap(ErrLayoutMismatch, "y")
	}
	mt, err := m.local.Transpose(ctx)
	if err != nil {
		return nil, err
	}
	var partial sparse.Vector
	err = partial.MulVec(ctx, mt, sparse.NewDenseVector(y.values))
	if err != nil {
		return nil, err
	}
	out := make([][]sparse.Entry, m.comm.Size())
	for _, e := range partial.Entries {
		owner, err := m.cols.Owner(e.Index)
		if err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], e)
	}
	in, err := comm.AllToAll(ctx, m.comm, out)
	if err != nil {
		return nil, errors.Wrap(err, "cannot reduce column contributions")
	}
	x, err := NewVector(m.comm, m.cols)
	if err != nil {
		return nil, err
	}
	summers := make([]sparse.KBNSummer, len(x.values))
	for _, entries := range in {
		for _, e := range entries {
			summers[e.Index-x.owned.Begin].Add(e.Value)
		}
	}
	for k := range summers {
		x.values[k] = summers[k].Sum()
	}
	return x, nil
}

// Gather returns the whole matrix as a serial sparse matrix on every rank.
// Collective.
func (m *Matrix) Gather(ctx context.Context) (*sparse.CSRMatrix, error) {
	if !m.IsCompressed() {
		return nil, ErrNotCompressed
	}
	local, err := m.local.CooEntries(ctx, spopt.Signed)
	if err != nil {
		return nil, err
	}
	for k := range local {
		local[k].Row += m.ownedRows.Begin
	}
	parts, err := comm.AllGather(ctx, m.comm, local)
	if err != nil {
		return nil, err
	}
	var entries []sparse.CooEntry
	for _, part := range parts {
		entries = append(entries, part...)
	}
	rows, cols := m.Dims()
	return sparse.NewCSRMatrixFromEntries(ctx, entries,
		spopt.FixedDim(rows, cols), spopt.Signed, spopt.RejectDuplicate)
}
