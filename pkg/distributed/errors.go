package distributed

import (
	"github.com/go-faster/errors"
)

var (
	// ErrNotCompressed is returned by operations that need a compressed
	// matrix, e.g. multiplication, when called before Compress.
	ErrNotCompressed = errors.New("matrix not compressed yet")

	// ErrFrozen is returned by writes issued after Compress.
	ErrFrozen = errors.New("matrix is frozen after compress")

	// ErrWriteModeMismatch is returned when insert and add writes are mixed
	// within one assembly.
	ErrWriteModeMismatch = errors.New("insert and add writes mixed")

	// ErrLayoutMismatch is returned when operands are distributed
	// differently than the operation requires.
	ErrLayoutMismatch = errors.New("distributed layout mismatch")
)
