package spopt

type Option = OptionForSet[Set]

func RowIndexNamed(name string) Option    { return func(o *Set) { AxisName(name)(o.Row) } }
func ColumnIndexNamed(name string) Option { return func(o *Set) { AxisName(name)(o.Column) } }
func ValueNamed(name string) Option       { return func(o *Set) { ValueName(name)(o.Value) } }

func FixedDim(rows, columns int) Option {
	return func(o *Set) { FixedAxisDim(rows)(o.Row); FixedAxisDim(columns)(o.Column) }
}

func MinDim(rows, columns int) Option {
	return func(o *Set) { MinAxisDim(rows)(o.Row); MinAxisDim(columns)(o.Column) }
}

func IncludeZero(o *Set) { IncludeZeroValue(o.Value) }

func AllowNegative(o *Set) { AllowNegativeValue(o.Value) }

func KeepLastDuplicate(o *Set) { DuplicatesSetTo(KeepLast)(o.Value) }
func SumDuplicate(o *Set)      { DuplicatesSetTo(SumDuplicates)(o.Value) }
func RejectDuplicate(o *Set)   { DuplicatesSetTo(RejectDuplicates)(o.Value) }

// Signed is shorthand for the options used by numerical operators:
// negative values and explicit zeros are both kept.
func Signed(o *Set) { AllowNegative(o); IncludeZero(o) }

func RowMajor(o *Set)    { o.ColumnMajor = false }
func ColumnMajor(o *Set) { o.ColumnMajor = true }
