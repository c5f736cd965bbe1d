package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNotAnObject     = errors.New("value is not a JSON object")
	ErrIntegerOverflow = errors.New("integer does not fit in 64 bits")
	ErrInvalidKey      = errors.New("key property must be a non-empty string or a positive integer")
)

// ErrorType categorizes errors by pipeline stage
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// stageTitles prefixes user-facing messages
var stageTitles = map[ErrorType]string{
	ErrorTypeInput:      "Input error",
	ErrorTypeParsing:    "JSON parsing error",
	ErrorTypeConversion: "Conversion error",
	ErrorTypeConfig:     "Configuration error",
	ErrorTypeOutput:     "Output error",
}

// AppError is an application-specific error with context.
// Path is the input property the error is about, when there is one.
type AppError struct {
	Type    ErrorType
	Message string
	Path    string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError of the same type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Path: PathOf(err), Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewConversionError creates a new error related to entity conversion.
// The path of a wrapped PathError is lifted onto the AppError.
func NewConversionError(message string, err error) *AppError {
	return newError(ErrorTypeConversion, message, err)
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// friendlySentinels are shown for bare sentinel errors, in match order
var friendlySentinels = []struct {
	err     error
	message string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrMultipleJSON, "Multiple JSON values found. Please provide a single JSON object or array."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with valid JSON content."},
	{ErrNoInput, "No input provided. Please specify a file with -i or pipe JSON data to stdin."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrNotAnObject, "Only JSON objects can be converted to entities."},
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.friendly()
	}

	for _, s := range friendlySentinels {
		if errors.Is(err, s.err) {
			return "Error: " + s.message
		}
	}

	return fmt.Sprintf("Error: %v", err)
}

func (e *AppError) friendly() string {
	title, ok := stageTitles[e.Type]
	if !ok {
		return fmt.Sprintf("Error: %s", e.Message)
	}

	switch e.Type {
	case ErrorTypeConversion:
		var pe PathError
		if e.Path != "" && errors.As(e.Err, &pe) {
			return fmt.Sprintf("%s at '%s': %s (%s)", title, e.Path, pe.Reason(), e.Message)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", title, e.Message, e.Err)
		}
	case ErrorTypeConfig:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", title, e.Message, e.Err)
		}
	}
	return fmt.Sprintf("%s: %s", title, e.Message)
}
