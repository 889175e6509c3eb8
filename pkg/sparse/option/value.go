package spopt

// Duplicates tells a matrix builder what to do with entries
// sharing the same (row, column) location.
type Duplicates int

const (
	// KeepLast keeps the entry given last; earlier ones are overwritten.
	KeepLast Duplicates = iota
	// SumDuplicates adds up all entries at the same location.
	SumDuplicates
	// RejectDuplicates fails the build with sparse.DuplicateEntryError.
	RejectDuplicates
)

// Value is the set of options that apply to entry values.
type Value struct {
	Name          string
	AllowNegative bool
	IncludeZero   bool
	Duplicates    Duplicates
}

func (o *Value) Reset() {
	*o = Value{}
	ValueName("v")(o)
	DisallowNegativeValue(o)
	ExcludeZeroValue(o)
	DuplicatesSetTo(KeepLast)(o)
}

func ValueName(name string) OptionForSet[Value] {
	return func(o *Value) { o.Name = name }
}

func DuplicatesSetTo(policy Duplicates) OptionForSet[Value] {
	return func(o *Value) { o.Duplicates = policy }
}

func AllowNegativeValue(o *Value)    { o.AllowNegative = true }
func DisallowNegativeValue(o *Value) { o.AllowNegative = false }
func IncludeZeroValue(o *Value)      { o.IncludeZero = true }
func ExcludeZeroValue(o *Value)      { o.IncludeZero = false }
