package jce

import (
	"errors"
	"fmt"
)

// ErrStringTooLong is returned when a String4 field declares a length
// beyond the 100 MiB wire limit.
var ErrStringTooLong = errors.New("jce: string4 length exceeds limit")

// ErrInvalidSize is returned for struct-relative length fields that fail
// a sanity bound (a negative collection count).
var ErrInvalidSize = errors.New("jce: invalid size field")

// TypeMismatchError reports that a field's wire type could not be widened
// into the type the caller declared.
type TypeMismatchError struct {
	Expected Type
	Got      Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("jce: type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// MissingFieldError reports a required field absent from the wire with no
// declared default.
type MissingFieldError struct {
	Name string
	Tag  byte
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("jce: missing required field %q (tag %d)", e.Name, e.Tag)
}
