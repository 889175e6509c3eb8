package sparse

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch signals a dimension mismatch
// between related data structures,
// ex: a matrix and the vector it is multiplied with.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// NegativeValueError signals a negative-valued entry was encountered
// where disallowed.
type NegativeValueError struct {
	Value float64
}

func (e NegativeValueError) Error() string {
	return fmt.Sprintf("negative value %#v not allowed", e.Value)
}

// DuplicateEntryError signals that two entries were given
// for the same location where duplicates are disallowed.
type DuplicateEntryError struct {
	Row, Column int
}

func (e DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate entry at (%d, %d)", e.Row, e.Column)
}
