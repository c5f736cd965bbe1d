package converter

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"cloud.google.com/go/datastore/apiv1/datastorepb"

	"github.com/web3-inreach/jentity/internal/config"
	"github.com/web3-inreach/jentity/internal/errors"
	"github.com/web3-inreach/jentity/internal/models"
)

// Converter turns JSON trees into Datastore entities.
// A Converter is immutable after construction and safe for concurrent use.
type Converter struct {
	emptyArrays        string
	strictElementTypes bool
	exclusions         []*regexp.Regexp
	excludeLongStrings bool
}

// NewConverter creates a Converter with the default configuration.
func NewConverter() *Converter {
	return &Converter{emptyArrays: config.EmptyArraysEmpty}
}

// NewConverterWithConfig creates a Converter with custom configuration.
// It fails when an index exclusion pattern does not compile.
func NewConverterWithConfig(cfg *config.Config) (*Converter, error) {
	exclusions, err := cfg.IndexExclusions()
	if err != nil {
		return nil, errors.NewConfigError("invalid indexing configuration", err)
	}
	return &Converter{
		emptyArrays:        cfg.Arrays.Empty,
		strictElementTypes: cfg.Arrays.StrictElementTypes,
		exclusions:         exclusions,
		excludeLongStrings: cfg.Indexing.ExcludeLongStrings,
	}, nil
}

var defaultConverter = NewConverter()

// ConvertToEntity converts an object node with the default configuration.
func ConvertToEntity(node models.Node) (*datastorepb.Entity, error) {
	return defaultConverter.ConvertToEntity(node)
}

// ConvertToEntity converts an object node into an entity with one property
// per field. Any failure aborts the whole conversion.
func (c *Converter) ConvertToEntity(node models.Node) (*datastorepb.Entity, error) {
	if !node.IsObject() {
		return nil, errors.NewConversionError(fmt.Sprintf("cannot convert %s to an entity", node.Kind), errors.ErrNotAnObject)
	}
	entity, err := c.convertObject(node, "")
	if err != nil {
		return nil, errors.NewConversionError("failed to convert object", err)
	}
	return entity, nil
}

// ConvertAll converts a parsed document: an object root yields one entity,
// an array root yields one entity per element.
func (c *Converter) ConvertAll(ir models.IntermediateRepresentation) ([]*datastorepb.Entity, error) {
	if !ir.RootIsArray {
		entity, err := c.ConvertToEntity(ir.Root)
		if err != nil {
			return nil, err
		}
		return []*datastorepb.Entity{entity}, nil
	}

	entities := make([]*datastorepb.Entity, 0, len(ir.Root.Elements))
	for i, element := range ir.Root.Elements {
		if !element.IsObject() {
			return nil, errors.NewConversionError(
				fmt.Sprintf("element %d of the root array is a %s, not an object", i, element.Kind),
				errors.ErrNotAnObject,
			)
		}
		entity, err := c.convertObject(element, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, errors.NewConversionError(fmt.Sprintf("failed to convert element %d", i), err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// convertObject walks the fields of an object node; field order is irrelevant.
func (c *Converter) convertObject(node models.Node, path string) (*datastorepb.Entity, error) {
	properties := make(map[string]*datastorepb.Value, len(node.Fields))
	for name, child := range node.Fields {
		value, err := c.convertField(child, joinPath(path, name))
		if err != nil {
			return nil, err
		}
		if c.excluded(name) {
			excludeFromIndexes(value)
		}
		properties[name] = value
	}
	return &datastorepb.Entity{Properties: properties}, nil
}

func (c *Converter) convertField(node models.Node, path string) (*datastorepb.Value, error) {
	switch node.Kind {
	case models.ObjectNode:
		entity, err := c.convertObject(node, path)
		if err != nil {
			return nil, err
		}
		return entityValue(entity), nil
	case models.ArrayNode:
		elements, err := c.convertArray(node, path)
		if err != nil {
			return nil, err
		}
		return c.arrayValue(elements, path)
	case models.ScalarNode:
		return c.leafValue(node.Scalar, path)
	default:
		return nil, &errors.UnsupportedTypeError{Path: path, Type: node.Kind.String()}
	}
}

// leafValue converts a scalar and applies the long string index rule.
func (c *Converter) leafValue(s models.Scalar, path string) (*datastorepb.Value, error) {
	value, err := scalarValue(s, path)
	if err != nil {
		return nil, err
	}
	if str, ok := value.GetValueType().(*datastorepb.Value_StringValue); ok && !utf8.ValidString(str.StringValue) {
		return nil, &errors.InvalidStringError{Path: path}
	}
	if c.excludeLongStrings && len(value.GetStringValue()) > MaxIndexedStringBytes {
		value.ExcludeFromIndexes = true
	}
	return value, nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
