package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/datastore/apiv1/datastorepb"

	"github.com/web3-inreach/jentity/internal/errors"
)

// NewScalar maps a native Go value onto a Scalar.
// Values outside the supported set return an *errors.UnsupportedTypeError.
func NewScalar(v any) (Scalar, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(float64(val)), nil
	case int:
		return Int64(int64(val)), nil
	case int32:
		return Int32(val), nil
	case int64:
		return Int64(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case time.Time:
		return Time(val), nil
	case *datastorepb.Entity:
		if val == nil {
			return Null(), nil
		}
		return Entity(val), nil
	default:
		return Scalar{}, &errors.UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
	}
}

// FromValue builds a tree from native Go values: map[string]any becomes an
// object, []any and slices of supported scalars become arrays, and everything
// else goes through NewScalar.
func FromValue(v any) (Node, error) {
	switch val := v.(type) {
	case Node:
		return val, nil
	case map[string]any:
		fields := make(map[string]Node, len(val))
		for key, child := range val {
			node, err := FromValue(child)
			if err != nil {
				return Node{}, wrapPath(err, key)
			}
			fields[key] = node
		}
		return NewObject(fields), nil
	case []any:
		return arrayFrom(val)
	case []map[string]any:
		return arrayFrom(val)
	case []string:
		return arrayFrom(val)
	case []int:
		return arrayFrom(val)
	case []int64:
		return arrayFrom(val)
	case []float64:
		return arrayFrom(val)
	case []bool:
		return arrayFrom(val)
	case []time.Time:
		return arrayFrom(val)
	default:
		s, err := NewScalar(v)
		if err != nil {
			return Node{}, err
		}
		return NewScalarNode(s), nil
	}
}

func arrayFrom[T any](values []T) (Node, error) {
	elements := make([]Node, len(values))
	for i, child := range values {
		node, err := FromValue(child)
		if err != nil {
			return Node{}, wrapPath(err, fmt.Sprintf("[%d]", i))
		}
		elements[i] = node
	}
	return NewArray(elements...), nil
}

// wrapPath prefixes the path of an UnsupportedTypeError with segment.
func wrapPath(err error, segment string) error {
	ute, ok := err.(*errors.UnsupportedTypeError)
	if !ok {
		return err
	}
	path := segment
	switch {
	case ute.Path == "":
	case ute.Path[0] == '[':
		path += ute.Path
	default:
		path += "." + ute.Path
	}
	return &errors.UnsupportedTypeError{Path: path, Type: ute.Type}
}
