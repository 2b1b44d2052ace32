package marker

import (
	"errors"
	"fmt"
)

// Validation failures. Use errors.Is to test for them.
var (
	ErrOutOfRange = errors.New("interval out of range")
	ErrNoMatch    = errors.New("text does not match marker grammar")
)

// ValidationError describes a rejected Interval or Marker construction.
type ValidationError struct {
	Err    error // ErrOutOfRange or ErrNoMatch
	Start  int
	End    int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v [%d,%d)", e.Err, e.Start, e.End)
	}
	return fmt.Sprintf("%v [%d,%d): %s", e.Err, e.Start, e.End, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
