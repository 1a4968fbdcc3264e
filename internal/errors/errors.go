// Package errors provides the typed domain errors of the pricing engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeDataIntegrity indicates malformed or incomplete indicator source data.
	// It is fatal for that indicator source only.
	TypeDataIntegrity Type = "DATA_INTEGRITY_ERROR"

	// TypeInvalidInput indicates a caller passed a non-positive price or ratio
	TypeInvalidInput Type = "INPUT_ERROR"

	// TypeNoPricePoints indicates the storefront has no usable price points
	// for a territory/currency
	TypeNoPricePoints Type = "NO_PRICE_POINTS"

	// TypeConversion indicates a currency could not be converted
	TypeConversion Type = "CONVERSION_ERROR"

	// TypeParsing indicates a parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type, so that
// errors.Is(err, errors.New(TypeNoPricePoints, "")) matches by category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if err, or any error it wraps, is of type t
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost domain error in err's chain
func TypeOf(err error) (Type, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

// DataIntegrity creates a data integrity error
func DataIntegrity(message string) *Error {
	return New(TypeDataIntegrity, message)
}

// InvalidInput creates an invalid input error
func InvalidInput(message string) *Error {
	return New(TypeInvalidInput, message)
}

// NoPricePoints creates a no price points error
func NoPricePoints(message string) *Error {
	return New(TypeNoPricePoints, message)
}

// Conversion creates a currency conversion error
func Conversion(message string) *Error {
	return New(TypeConversion, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}
