package spopt

// OptionForSet modifies one option set of type O.
type OptionForSet[O any] func(*O)

// resettable is implemented by option sets that know their defaults.
type resettable[O any] interface {
	*O
	Reset()
}

// newForSet returns an O at its defaults with opts applied in order.
func newForSet[O any, P resettable[O]](opts ...OptionForSet[O]) *O {
	o := new(O)
	resetAndApply[O, P](o, opts...)
	return o
}

// resetAndApply restores o to its defaults, then applies opts in order.
func resetAndApply[O any, P resettable[O]](o *O, opts ...OptionForSet[O]) {
	P(o).Reset()
	for _, opt := range opts {
		opt(o)
	}
}
