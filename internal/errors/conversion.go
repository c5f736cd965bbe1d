package errors

import (
	"errors"
	"fmt"
)

// Conversion failures. The typed errors below match these with errors.Is.
var (
	ErrUnsupportedType = errors.New("unsupported value type")
	ErrEmptySequence   = errors.New("cannot deduce the element type of an empty array")
	ErrMixedArray      = errors.New("array mixes incompatible element types")
	ErrInvalidUTF8     = errors.New("string is not valid UTF-8")
)

// PathError is a conversion failure tied to one property of the input.
// PropertyPath uses dots for fields and [i] for array elements, e.g. "a.b[0]".
type PathError interface {
	error
	PropertyPath() string
	// Reason describes the failure without the path.
	Reason() string
}

// PathOf returns the property path of the innermost PathError in err's chain.
func PathOf(err error) string {
	var pe PathError
	if errors.As(err, &pe) {
		return pe.PropertyPath()
	}
	return ""
}

func withPath(reason, path string) string {
	if path == "" {
		return reason
	}
	return fmt.Sprintf("%s at '%s'", reason, path)
}

// UnsupportedTypeError reports a value whose runtime type has no conversion.
type UnsupportedTypeError struct {
	// Path is the property path of the offending value, empty at the boundary.
	Path string
	Type string
}

func (e *UnsupportedTypeError) Error() string        { return withPath(e.Reason(), e.Path) }
func (e *UnsupportedTypeError) PropertyPath() string { return e.Path }
func (e *UnsupportedTypeError) Reason() string {
	return fmt.Sprintf("%v: %s", ErrUnsupportedType, e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// EmptySequenceError is returned for empty arrays when empty arrays are
// configured to be rejected.
type EmptySequenceError struct {
	Path string
}

func (e *EmptySequenceError) Error() string        { return withPath(e.Reason(), e.Path) }
func (e *EmptySequenceError) PropertyPath() string { return e.Path }
func (e *EmptySequenceError) Reason() string       { return ErrEmptySequence.Error() }

func (e *EmptySequenceError) Is(target error) bool {
	return target == ErrEmptySequence
}

// MixedArrayError reports an element whose category differs from the
// category deduced from the first element of its array.
type MixedArrayError struct {
	Path  string
	Index int
	Want  string
	Got   string
}

func (e *MixedArrayError) Error() string {
	return fmt.Sprintf("%s: element %d is %s, expected %s", withPath(ErrMixedArray.Error(), e.Path), e.Index, e.Got, e.Want)
}

func (e *MixedArrayError) PropertyPath() string { return e.Path }

func (e *MixedArrayError) Reason() string {
	return fmt.Sprintf("%v: element %d is %s, expected %s", ErrMixedArray, e.Index, e.Got, e.Want)
}

func (e *MixedArrayError) Is(target error) bool {
	return target == ErrMixedArray
}

// InvalidStringError reports a string value holding bytes that are not UTF-8.
// Datastore string values must be valid UTF-8.
type InvalidStringError struct {
	Path string
}

func (e *InvalidStringError) Error() string        { return withPath(e.Reason(), e.Path) }
func (e *InvalidStringError) PropertyPath() string { return e.Path }
func (e *InvalidStringError) Reason() string       { return ErrInvalidUTF8.Error() }

func (e *InvalidStringError) Is(target error) bool {
	return target == ErrInvalidUTF8
}
