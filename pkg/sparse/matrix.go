package sparse

import (
	"context"
	"sort"

	spopt "k3l.io/go-amge/pkg/sparse/option"
	"k3l.io/go-amge/pkg/util"
)

// CSMatrix is a compressed sparse matrix.
// Used as the base of CSRMatrix.
//
// (Shallow-)copying CSMatrix is lightweight.
type CSMatrix struct {
	MajorDim, MinorDim int
	Entries            [][]Entry
}

// NewCSMatrixFromEntries creates a new compressed sparse matrix
// with the given entries.
func NewCSMatrixFromEntries(
	ctx context.Context, entries []CooEntry, opts ...spopt.Option,
) (*CSMatrix, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan CooEntry)
	sendErr := make(chan error, 1)
	go func() {
		defer close(ch)
		defer close(sendErr)
		sendErr <- util.SendElements(ctx, entries, ch)
	}()
	m, err := NewCSMatrixFromEntryCh(ctx, ch, opts...)
	if err == nil {
		err = util.ErrFromCh(ctx, sendErr)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewCSMatrixFromEntryCh creates a new compressed sparse matrix
// with the entries taken from a channel.
//
// Entries at the same location are resolved per the duplicates option;
// "last" refers to the order in which the channel delivered them.
func NewCSMatrixFromEntryCh(
	ctx context.Context, ch <-chan CooEntry, opts ...spopt.Option,
) (*CSMatrix, error) {
	o := spopt.New(opts...)
	majorAxis, minorAxis := o.MajorMinorAxes()
	majMinFromRowCol := o.MajMinFromRowCol()
	m := &CSMatrix{
		MajorDim: majorAxis.Dim,
		MinorDim: minorAxis.Dim,
		Entries:  make([][]Entry, majorAxis.Dim),
	}
EntryLoop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case e, ok := <-ch:
			switch {
			case !ok:
				break EntryLoop
			case e.Row < 0 || e.Column < 0:
				return nil, util.IndexOutOfBoundsError{
					Index: min(e.Row, e.Column), Bound: 0,
				}
			case e.Value < 0 && !o.Value.AllowNegative:
				return nil, NegativeValueError{e.Value}
			}
			major, minor := majMinFromRowCol(e.Row, e.Column)
			if major >= m.MajorDim {
				if !majorAxis.Grow {
					return nil, util.IndexOutOfBoundsError{
						Index: major, Bound: m.MajorDim,
					}
				}
				m.SetMajorDim(major + 1)
			}
			if minor >= m.MinorDim {
				if !minorAxis.Grow {
					return nil, util.IndexOutOfBoundsError{
						Index: minor, Bound: m.MinorDim,
					}
				}
				m.SetMinorDim(minor + 1)
			}
			m.Entries[major] = append(m.Entries[major], Entry{
				Index: minor,
				Value: e.Value,
			})
		}
	}
	rowColFromMajMin := o.RowColFromMajMin()
	for major, span := range m.Entries {
		span, dup := resolveDuplicates(SortEntriesByIndex(span),
			o.Value.Duplicates)
		if dup >= 0 {
			row, col := rowColFromMajMin(major, dup)
			return nil, DuplicateEntryError{Row: row, Column: col}
		}
		if !o.Value.IncludeZero {
			span = dropZeros(span)
		}
		m.Entries[major] = util.ShrinkWrap(span)
	}
	m.Entries = util.ShrinkWrap(m.Entries)
	return m, nil
}

// resolveDuplicates collapses runs of same-index entries in a sorted span.
// It returns the first duplicated index if the policy rejects duplicates,
// or -1.
func resolveDuplicates(
	span []Entry, policy spopt.Duplicates,
) ([]Entry, int) {
	if len(span) < 2 {
		return span, -1
	}
	out := span[:1]
	for _, e := range span[1:] {
		last := &out[len(out)-1]
		if e.Index != last.Index {
			out = append(out, e)
			continue
		}
		switch policy {
		case spopt.RejectDuplicates:
			return span, e.Index
		case spopt.SumDuplicates:
			last.Value += e.Value
		default:
			last.Value = e.Value
		}
	}
	return out, -1
}

func dropZeros(span []Entry) []Entry {
	zeros := 0
	for i, e := range span {
		if e.Value == 0 {
			zeros++
		} else if zeros > 0 {
			span[i-zeros] = e
		}
	}
	return span[:len(span)-zeros]
}

// SetMajorDim grows/shrinks the receiver in-place,
// so it matches the given major dimension.
func (m *CSMatrix) SetMajorDim(dim int) {
	m.Entries = util.GrowCap(m.Entries, dim)
	m.Entries = m.Entries[:dim]
	m.MajorDim = dim
}

// SetMinorDim grows/shrinks the receiver in-place,
// so it matches the given minor dimension.
func (m *CSMatrix) SetMinorDim(dim int) {
	if dim < m.MinorDim {
		for maj, entries := range m.Entries {
			end := sort.Search(len(entries),
				func(i int) bool { return entries[i].Index >= dim })
			m.Entries[maj] = entries[:end]
		}
	}
	m.MinorDim = dim
}

// NNZ counts stored entries.
func (m *CSMatrix) NNZ() (nnz int) {
	for _, row := range m.Entries {
		nnz += len(row)
	}
	return
}

// Lookup returns the entry value at the given major/minor location,
// and whether it is stored.
func (m *CSMatrix) Lookup(major, minor int) (float64, bool) {
	if major < 0 || major >= len(m.Entries) {
		return 0, false
	}
	span := m.Entries[major]
	i := sort.Search(len(span),
		func(i int) bool { return span[i].Index >= minor })
	if i < len(span) && span[i].Index == minor {
		return span[i].Value, true
	}
	return 0, false
}

// Scale multiplies every stored entry by a, in-place.
// Stored entries are kept even if they become zero.
func (m *CSMatrix) Scale(a float64) {
	for _, span := range m.Entries {
		for i := range span {
			span[i].Value *= a
		}
	}
}

// Transpose transposes the sparse matrix.
func (m *CSMatrix) Transpose(ctx context.Context) (*CSMatrix, error) {
	nnzs := make([]int, m.MinorDim) // indexed by column
	for _, rowEntries := range m.Entries {
		for _, e := range rowEntries {
			nnzs[e.Index]++
		}
	}
	transposedEntries := make([][]Entry, m.MinorDim)
	for col, nnz := range nnzs {
		if nnz != 0 {
			transposedEntries[col] = make([]Entry, 0, nnz)
		}
	}
	for row, rowEntries := range m.Entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for _, e := range rowEntries {
			col := e.Index
			transposedEntries[col] = append(transposedEntries[col],
				Entry{Index: row, Value: e.Value})
		}
	}
	mt := &CSMatrix{
		MajorDim: m.MinorDim,
		MinorDim: m.MajorDim,
		Entries:  transposedEntries,
	}
	return mt, nil
}

// SendCooEntries sends all coordinate-format entries into a channel.
func (m *CSMatrix) SendCooEntries(
	ctx context.Context, ch chan<- CooEntry, opts ...spopt.Option,
) error {
	o := spopt.New(opts...)
	rowColFromMajMin := o.RowColFromMajMin()
	for major, span := range m.Entries {
		for _, entry := range span {
			row, col := rowColFromMajMin(major, entry.Index)
			if entry.Value == 0 && !o.Value.IncludeZero {
				continue
			}
			coo := CooEntry{Row: row, Column: col, Value: entry.Value}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- coo:
			}
		}
	}
	return nil
}

// CooEntries returns all coordinate-format entries.
func (m *CSMatrix) CooEntries(
	ctx context.Context, opts ...spopt.Option,
) ([]CooEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan CooEntry)
	sendErr := make(chan error, 1)
	go func() {
		defer close(ch)
		defer close(sendErr)
		sendErr <- m.SendCooEntries(ctx, ch, opts...)
	}()
	entries, err := util.ReceiveElements(ctx, ch)
	if err == nil {
		err = util.ErrFromCh(ctx, sendErr)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteIntoCSV writes all entries into a CSV, preceded by a header row
// with the axis/value names.
//
// rowOffset is added to every row index;
// distributed matrices use it to write global row indices.
func (m *CSMatrix) WriteIntoCSV(
	ctx context.Context, w util.CSVWriter, rowOffset int,
	opts ...spopt.Option,
) error {
	o := spopt.New(opts...)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	err := w.Write([]string{o.Row.Name, o.Column.Name, o.Value.Name})
	if err != nil {
		return err
	}
	ch := make(chan CooEntry)
	sendErr := make(chan error, 1)
	go func() {
		defer close(ch)
		defer close(sendErr)
		sendErr <- m.SendCooEntries(ctx, ch, opts...)
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case coo, ok := <-ch:
			if !ok {
				return util.ErrFromCh(ctx, sendErr)
			}
			err = w.Write([]string{
				util.FormatIndex(coo.Row + rowOffset),
				util.FormatIndex(coo.Column),
				util.FormatValue(coo.Value),
			})
			if err != nil {
				return err
			}
		}
	}
}

// CSRMatrix is a compressed sparse row matrix.
type CSRMatrix struct {
	CSMatrix
}

// NewCSRMatrix creates a new compressed sparse row matrix
// with the given dimension and entries.
//
// The given entries are sorted in row-column order.
func NewCSRMatrix(
	rows, cols int, entries []CooEntry, opts ...spopt.Option,
) *CSRMatrix {
	opts = append([]spopt.Option{spopt.FixedDim(rows, cols)}, opts...)
	return util.Must(NewCSRMatrixFromEntries(context.TODO(), entries, opts...))
}

func cs2csr(m *CSMatrix, err error) (*CSRMatrix, error) {
	if err != nil {
		return nil, err
	}
	return &CSRMatrix{CSMatrix: *m}, nil
}

// NewCSRMatrixFromEntries creates a new compressed sparse row matrix
// with the given entries.
func NewCSRMatrixFromEntries(
	ctx context.Context, entries []CooEntry, opts ...spopt.Option,
) (*CSRMatrix, error) {
	opts = append(opts, spopt.RowMajor)
	return cs2csr(NewCSMatrixFromEntries(ctx, entries, opts...))
}

// Dims returns the numbers of rows/columns.
func (m *CSRMatrix) Dims() (rows, cols int) { return m.MajorDim, m.MinorDim }

// At returns the entry at the given row/column; zero if not stored.
func (m *CSRMatrix) At(row, col int) float64 {
	v, _ := m.Lookup(row, col)
	return v
}

// RowVector returns the given row as a sparse vector.
// The returned vector shares the same slice of entry objects.
func (m *CSRMatrix) RowVector(index int) *Vector {
	return &Vector{
		Dim:     m.MinorDim,
		Entries: m.Entries[index],
	}
}

// Transpose transposes the matrix.
func (m *CSRMatrix) Transpose(ctx context.Context) (*CSRMatrix, error) {
	mt, err := m.CSMatrix.Transpose(ctx)
	if err != nil {
		return nil, err
	}
	return &CSRMatrix{*mt}, nil
}

// CooEntries returns all coordinate-format entries.
func (m *CSRMatrix) CooEntries(
	ctx context.Context, opts ...spopt.Option,
) ([]CooEntry, error) {
	opts = append(opts, spopt.RowMajor)
	return m.CSMatrix.CooEntries(ctx, opts...)
}

// WriteIntoCSV writes all entries into a CSV.
func (m *CSRMatrix) WriteIntoCSV(
	ctx context.Context, w util.CSVWriter, rowOffset int,
	opts ...spopt.Option,
) error {
	opts = append(opts, spopt.RowMajor)
	return m.CSMatrix.WriteIntoCSV(ctx, w, rowOffset, opts...)
}

// Matrix is just an alias of CSRMatrix.
type Matrix = CSRMatrix
