package util

import (
	"context"
	"errors"
)

// ErrNoResult is returned by ErrFromCh when the producer closed its error
// channel without reporting an outcome.
var ErrNoResult = errors.New("producer exited without reporting its outcome")

// Must returns r, or panics with a non-nil err.
// Use it only where err cannot happen for valid arguments,
// such as a partition built from non-negative sizes.
func Must[R any](r R, err error) R {
	if err != nil {
		panic(err)
	}
	return r
}

// ErrFromCh waits for the outcome a producer goroutine sends on ch
// (nil for success) and returns it, or the context error if ctx ends first.
func ErrFromCh(ctx context.Context, ch <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-ch:
		if !ok {
			return ErrNoResult
		}
		return err
	}
}
