package amge

import (
	"fmt"

	"github.com/pkg/errors"

	"k3l.io/go-amge/pkg/distributed"
)

var (
	// ErrConfig is matched by configuration errors.
	ErrConfig = errors.New("invalid configuration")

	// ErrSolverFailure is matched by local eigensolver failures.
	ErrSolverFailure = errors.New("local eigensolver failed")

	// ErrInvariant is matched by internal consistency failures,
	// which indicate a broken collaborator contract.
	ErrInvariant = errors.New("invariant violated")

	// ErrLayoutMismatch is matched when the restriction matrix cannot share
	// the fine operator's column layout.
	ErrLayoutMismatch = distributed.ErrLayoutMismatch
)

// ConfigError reports a malformed or missing configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// SolverError reports that the eigensolve of an agglomerate failed.
type SolverError struct {
	Agglomerate int
	Err         error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("agglomerate %d: %s: %v",
		e.Agglomerate, ErrSolverFailure, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

func (e *SolverError) Is(target error) bool { return target == ErrSolverFailure }

// InvariantError reports an internal consistency failure.
type InvariantError struct {
	What string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvariant, e.What)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariantf(format string, args ...any) error {
	return &InvariantError{What: fmt.Sprintf(format, args...)}
}
