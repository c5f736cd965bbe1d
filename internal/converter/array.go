package converter

import (
	"fmt"

	"cloud.google.com/go/datastore/apiv1/datastorepb"

	"github.com/web3-inreach/jentity/internal/config"
	"github.com/web3-inreach/jentity/internal/errors"
	"github.com/web3-inreach/jentity/internal/models"
)

// ElementCategory classifies a converted array element.
type ElementCategory int

const (
	InvalidElements ElementCategory = iota
	EntityElements
	ArrayElements
	FloatElements
	IntegerElements
	StringElements
	BoolElements
	TimeElements
	NullElements
	// ValueElements groups every non-entity category when element types are not strict.
	ValueElements
)

func (c ElementCategory) String() string {
	switch c {
	case EntityElements:
		return "entity"
	case ArrayElements:
		return "array"
	case FloatElements:
		return "float"
	case IntegerElements:
		return "integer"
	case StringElements:
		return "string"
	case BoolElements:
		return "boolean"
	case TimeElements:
		return "timestamp"
	case NullElements:
		return "null"
	case ValueElements:
		return "value"
	default:
		return "invalid"
	}
}

// categoryOf reports the category of a converted element.
func categoryOf(v *datastorepb.Value) ElementCategory {
	switch v.GetValueType().(type) {
	case *datastorepb.Value_EntityValue:
		return EntityElements
	case *datastorepb.Value_ArrayValue:
		return ArrayElements
	case *datastorepb.Value_DoubleValue:
		return FloatElements
	case *datastorepb.Value_IntegerValue:
		return IntegerElements
	case *datastorepb.Value_StringValue:
		return StringElements
	case *datastorepb.Value_BooleanValue:
		return BoolElements
	case *datastorepb.Value_TimestampValue:
		return TimeElements
	case *datastorepb.Value_NullValue:
		return NullElements
	default:
		return InvalidElements
	}
}

// classify collapses categories to entity vs value unless strict typing is on.
func (c *Converter) classify(category ElementCategory) ElementCategory {
	if c.strictElementTypes || category == EntityElements || category == InvalidElements {
		return category
	}
	return ValueElements
}

// convertArray converts every element of an array node, preserving order.
// Nested arrays are converted recursively and wrapped as a single element.
func (c *Converter) convertArray(node models.Node, path string) ([]*datastorepb.Value, error) {
	elements := make([]*datastorepb.Value, 0, len(node.Elements))
	for i, child := range node.Elements {
		elementPath := fmt.Sprintf("%s[%d]", path, i)

		switch child.Kind {
		case models.ObjectNode:
			entity, err := c.convertObject(child, elementPath)
			if err != nil {
				return nil, err
			}
			elements = append(elements, entityValue(entity))
		case models.ArrayNode:
			inner, err := c.convertArray(child, elementPath)
			if err != nil {
				return nil, err
			}
			value, err := c.arrayValue(inner, elementPath)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		case models.ScalarNode:
			value, err := c.leafValue(child.Scalar, elementPath)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		default:
			return nil, &errors.UnsupportedTypeError{Path: elementPath, Type: child.Kind.String()}
		}
	}
	return elements, nil
}

// arrayValue wraps converted elements as one array value. The category of
// the first element decides what every other element must be.
func (c *Converter) arrayValue(elements []*datastorepb.Value, path string) (*datastorepb.Value, error) {
	if len(elements) == 0 {
		if c.emptyArrays == config.EmptyArraysError {
			return nil, &errors.EmptySequenceError{Path: path}
		}
		return arrayOf(elements), nil
	}

	want := c.classify(categoryOf(elements[0]))
	for i := 1; i < len(elements); i++ {
		if got := c.classify(categoryOf(elements[i])); got != want {
			return nil, &errors.MixedArrayError{Path: path, Index: i, Want: want.String(), Got: got.String()}
		}
	}

	switch want {
	case EntityElements, ValueElements, ArrayElements,
		FloatElements, IntegerElements, StringElements,
		BoolElements, TimeElements, NullElements:
		return arrayOf(elements), nil
	default:
		return nil, &errors.UnsupportedTypeError{Path: path + "[0]", Type: fmt.Sprintf("%T", elements[0].GetValueType())}
	}
}

func arrayOf(elements []*datastorepb.Value) *datastorepb.Value {
	if elements == nil {
		elements = []*datastorepb.Value{}
	}
	return &datastorepb.Value{ValueType: &datastorepb.Value_ArrayValue{ArrayValue: &datastorepb.ArrayValue{Values: elements}}}
}
