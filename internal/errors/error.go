package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryStore      Category = "store"
	CategoryValue      Category = "value"
	CategoryListener   Category = "listener"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
	CategoryDiagnostic Category = "diagnostic"
)

// ReworkError is a structured error with a code, suggestion and documentation.
type ReworkError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (store, value, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Store is the identifier of the store involved, if any.
	Store string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReworkError) Error() string {
	msg := e.Message
	if e.Store != "" {
		msg = fmt.Sprintf("%s (store %q)", msg, e.Store)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReworkError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a ReworkError with the same code.
func (e *ReworkError) Is(target error) bool {
	t, ok := target.(*ReworkError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// Warning reports whether the error is a recoverable diagnostic.
func (e *ReworkError) Warning() bool {
	return e.Category == CategoryDiagnostic
}

// WithStore records the store identifier involved.
func (e *ReworkError) WithStore(id string) *ReworkError {
	e.Store = id
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReworkError) WithSuggestion(s string) *ReworkError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReworkError) WithDetail(d string) *ReworkError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *ReworkError) WithDetailf(format string, args ...any) *ReworkError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *ReworkError) Wrap(err error) *ReworkError {
	e.Wrapped = err
	return e
}

// New creates a ReworkError from a registered error code.
func New(code string) *ReworkError {
	template, ok := registry[code]
	if !ok {
		return &ReworkError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReworkError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new ReworkError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReworkError {
	return &ReworkError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReworkError.
func FromError(err error, code string) *ReworkError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReworkError); ok {
		return re
	}
	return New(code).Wrap(err)
}
