// Package util contains various utilities used by go-amge.
package util

import (
	"context"
	"fmt"
	"slices"
)

// Number is the set of element types the numeric slice helpers accept.
type Number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float64
}

// GrowCap grows the capacity of a slice to at least the given target.
// The size grow exponentially, in order to avoid frequent reallocation/moving.
func GrowCap[T any](s []T, target int) []T {
	c := cap(s)
	for c < target {
		c = c*11/10 + 10
	}
	return slices.Grow(s, c-len(s))
}

// ShrinkWrap shrink-wraps the slice, i.e. leaves no excess capacity.
// Identical to slices.Clip, except it coerces zero-length slice into nil.
func ShrinkWrap[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clip(s)
}

// Sum returns the sum of the slice elements.
// For floating-point sums where accuracy matters, use sparse.KBNSummer.
func Sum[T Number](s []T) (sum T) {
	for _, v := range s {
		sum += v
	}
	return
}

// Filled returns a new slice of length n with every element set to v.
func Filled[T any](n int, v T) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// IndexOutOfBoundsError is returned when the requested index is out of bounds.
type IndexOutOfBoundsError struct {
	Index int
	Bound int
}

func (e IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds 0 <= index < %d", e.Index,
		e.Bound)
}

// SendElements sends all elements of the given slice to a channel.
func SendElements[T any](ctx context.Context, s []T, ch chan<- T) error {
	for _, v := range s {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- v:
		}
	}
	return nil
}

// ReceiveElements receives all elements from a channel into a slice,
// until the channel is closed.
func ReceiveElements[T any](
	ctx context.Context, ch <-chan T,
) (s []T, err error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case v, ok := <-ch:
			if !ok {
				return s, nil
			}
			s = append(s, v)
		}
	}
}
