package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "unsupported type",
			err:      &UnsupportedTypeError{Path: "price", Type: "uint64"},
			sentinel: ErrUnsupportedType,
		},
		{
			name:     "empty sequence",
			err:      &EmptySequenceError{Path: "tags"},
			sentinel: ErrEmptySequence,
		},
		{
			name:     "mixed array",
			err:      &MixedArrayError{Path: "items", Index: 1, Want: "entity", Got: "integer"},
			sentinel: ErrMixedArray,
		},
		{
			name:     "invalid string",
			err:      &InvalidStringError{Path: "bad"},
			sentinel: ErrInvalidUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))

			wrapped := NewConversionError("failed to convert object", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel), "sentinel should be reachable through AppError")
			assert.True(t, errors.Is(fmt.Errorf("outer: %w", wrapped), tt.sentinel))
		})
	}
}

func TestConversionErrors_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "unsupported type without path",
			err:      &UnsupportedTypeError{Type: "[]uint8"},
			expected: "unsupported value type: []uint8",
		},
		{
			name:     "unsupported type with path",
			err:      &UnsupportedTypeError{Path: "lst[0]", Type: "complex128"},
			expected: "unsupported value type: complex128 at 'lst[0]'",
		},
		{
			name:     "empty sequence",
			err:      &EmptySequenceError{Path: "tags"},
			expected: "cannot deduce the element type of an empty array at 'tags'",
		},
		{
			name:     "mixed array",
			err:      &MixedArrayError{Path: "items", Index: 2, Want: "entity", Got: "string"},
			expected: "array mixes incompatible element types at 'items': element 2 is string, expected entity",
		},
		{
			name:     "invalid string",
			err:      &InvalidStringError{Path: "notes[2]"},
			expected: "string is not valid UTF-8 at 'notes[2]'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConversionErrors_As(t *testing.T) {
	err := NewConversionError("failed to convert object", &MixedArrayError{Path: "a", Index: 3, Want: "value", Got: "entity"})

	var mixed *MixedArrayError
	if assert.True(t, errors.As(err, &mixed)) {
		assert.Equal(t, "a", mixed.Path)
		assert.Equal(t, 3, mixed.Index)
	}
	assert.False(t, errors.Is(err, ErrEmptySequence))
}

func TestPathErrors_Reason(t *testing.T) {
	tests := []struct {
		err    PathError
		path   string
		reason string
	}{
		{&UnsupportedTypeError{Path: "p", Type: "uint8"}, "p", "unsupported value type: uint8"},
		{&EmptySequenceError{Path: "tags"}, "tags", "cannot deduce the element type of an empty array"},
		{&MixedArrayError{Path: "m", Index: 1, Want: "entity", Got: "null"}, "m", "array mixes incompatible element types: element 1 is null, expected entity"},
		{&InvalidStringError{Path: "s"}, "s", "string is not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.err.PropertyPath())
			assert.Equal(t, tt.reason, tt.err.Reason())
			assert.Equal(t, tt.path, PathOf(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.Equal(t, "", PathOf(errors.New("plain")))
}
