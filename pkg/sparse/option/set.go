package spopt

// New returns the option set at its defaults, modified by opts.
func New(opts ...Option) *Set { return newForSet[Set](opts...) }

// Set holds the options of one matrix or vector construction.
type Set struct {
	Row         *Axis // vectors use Row only
	Column      *Axis
	Value       *Value
	ColumnMajor bool
}

// Reset restores the defaults: axes named "i" and "j", value named "v",
// dimensions grown to fit the entries, negative values rejected,
// zero values dropped, and the last of duplicate entries kept.
// Restriction and operator assembly override the value policy
// (see Signed, SumDuplicate).
func (o *Set) Reset() {
	*o = Set{Row: &Axis{}, Column: &Axis{}, Value: &Value{}}
	resetAndApply(o.Row)
	resetAndApply(o.Column, AxisName("j"))
	resetAndApply(o.Value)
}

// MajorMinorAxes returns the axis options in storage order:
// rows first unless ColumnMajor.
func (o *Set) MajorMinorAxes() (major, minor *Axis) {
	if o.ColumnMajor {
		return o.Column, o.Row
	}
	return o.Row, o.Column
}

// MajMinFromRowCol maps a (row, column) position to its storage position.
func (o *Set) MajMinFromRowCol() func(row, col int) (maj, min int) {
	if o.ColumnMajor {
		return transposed
	}
	return identical
}

// RowColFromMajMin maps a storage position back to (row, column).
func (o *Set) RowColFromMajMin() func(maj, min int) (row, col int) {
	if o.ColumnMajor {
		return transposed
	}
	return identical
}

func identical(a, b int) (int, int)  { return a, b }
func transposed(a, b int) (int, int) { return b, a }
