package spopt

// Axis is the set of options that apply to one matrix axis.
type Axis struct {
	Name string
	Dim  int  // minimum (if grow) or fixed (if not grow) dimension
	Grow bool // whether dimension can increase to match incoming indices
}

// Reset resets all axis options to their defaults.
//
// - Axis name is "i".
// - No minimum Dim, axis starts from zero dimension.
// - Dim grows automatically to accommodate new indices.
func (o *Axis) Reset() {
	*o = Axis{}
	AxisName("i")(o)
	MinAxisDim(0)(o)
}

// AxisName specifies an alternative axis name, e.g. "j" for the column axis.
func AxisName(name string) OptionForSet[Axis] {
	return func(o *Axis) { o.Name = name }
}

// FixedAxisDim sets a fixed axis dimension;
// out-of-range indices are treated as errors.
func FixedAxisDim(dim int) OptionForSet[Axis] {
	return func(o *Axis) { o.Dim, o.Grow = dim, false }
}

// MinAxisDim sets a minimum axis dimension;
// the dimension grows to accommodate out-of-range indices.
func MinAxisDim(dim int) OptionForSet[Axis] {
	return func(o *Axis) { o.Dim, o.Grow = dim, true }
}
