package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/web3-inreach/jentity/internal/errors" // Custom errors package
	"github.com/web3-inreach/jentity/internal/models"
)

// Options controls how JSON scalars are typed
type Options struct {
	// DetectTimestamps turns ISO 8601 date-time strings into timestamp scalars.
	DetectTimestamps bool
	// LooseTimestamps also detects plain dates and space separated date-times.
	LooseTimestamps bool
}

// DefaultOptions returns the options used by Parse, ParseString and ParseFile
func DefaultOptions() Options {
	return Options{DetectTimestamps: true}
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	return ParseWithOptions(reader, DefaultOptions())
}

// ParseWithOptions is Parse with explicit scalar typing options
func ParseWithOptions(reader io.Reader, opts Options) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	var rootValue interface{}
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &unmarshalTypeError) {
			return models.IntermediateRepresentation{}, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	// Only whitespace may follow the first value
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
			}
		} else {
			return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	root, err := toNode(rootValue, "", opts)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	return models.IntermediateRepresentation{
		Root:        root,
		RootIsArray: root.IsArray(),
	}, nil
}

// toNode converts decoded JSON values into model nodes
func toNode(val interface{}, path string, opts Options) (models.Node, error) {
	switch v := val.(type) {
	case map[string]interface{}:
		fields := make(map[string]models.Node, len(v))
		for key, value := range v {
			child, err := toNode(value, joinPath(path, key), opts)
			if err != nil {
				return models.Node{}, err
			}
			fields[key] = child
		}
		return models.NewObject(fields), nil
	case []interface{}:
		elements := make([]models.Node, len(v))
		for i, value := range v {
			child, err := toNode(value, fmt.Sprintf("%s[%d]", path, i), opts)
			if err != nil {
				return models.Node{}, err
			}
			elements[i] = child
		}
		return models.NewArray(elements...), nil
	case json.Number:
		s, err := numberScalar(v, path)
		if err != nil {
			return models.Node{}, err
		}
		return models.NewScalarNode(s), nil
	case string:
		if opts.DetectTimestamps {
			detect := ParseTimestamp
			if opts.LooseTimestamps {
				detect = ParseLooseTimestamp
			}
			if t, ok := detect(v); ok {
				return models.NewScalarNode(models.Time(t)), nil
			}
		}
		return models.NewScalarNode(models.String(v)), nil
	case bool:
		return models.NewScalarNode(models.Bool(v)), nil
	case nil:
		return models.NewScalarNode(models.Null()), nil
	default:
		return models.Node{}, errors.NewParsingError(fmt.Sprintf("unexpected JSON value of type %T at '%s'", v, path), errors.ErrInvalidJSON)
	}
}

// numberScalar types a JSON number: integer literals become int64, everything else float64
func numberScalar(num json.Number, path string) (models.Scalar, error) {
	if i, err := num.Int64(); err == nil {
		return models.Int64(i), nil
	}
	if !strings.ContainsAny(string(num), ".eE") {
		return models.Scalar{}, errors.NewParsingError(
			fmt.Sprintf("integer %s at '%s' is out of range", num, path),
			errors.ErrIntegerOverflow,
		)
	}
	f, err := num.Float64()
	if err != nil {
		return models.Scalar{}, errors.NewParsingError(fmt.Sprintf("number %s at '%s' is out of range", num, path), err)
	}
	return models.Float(f), nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseStringWithOptions(jsonString, DefaultOptions())
}

// ParseStringWithOptions parses JSON from a string with explicit options
func ParseStringWithOptions(jsonString string, opts Options) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return ParseWithOptions(strings.NewReader(jsonString), opts)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	return ParseFileWithOptions(filePath, DefaultOptions())
}

// ParseFileWithOptions parses JSON from a file path with explicit options
func ParseFileWithOptions(filePath string, opts Options) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return ParseWithOptions(file, opts)
}
