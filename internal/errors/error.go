package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryStructural Category = "structural"
	CategoryRender     Category = "render"
	CategoryConfig     Category = "config"
	CategoryTransport  Category = "transport"
	CategoryDocument   Category = "document"
	CategoryCLI        Category = "cli"
)

// WeaveError is a structured error with a registered code.
type WeaveError struct {
	// Code is a unique error identifier (e.g., "W001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, specific to this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WeaveError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WeaveError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a WeaveError with the same code.
func (e *WeaveError) Is(target error) bool {
	t, ok := target.(*WeaveError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetail sets the occurrence-specific detail.
func (e *WeaveError) WithDetail(detail string) *WeaveError {
	e.Detail = detail
	return e
}

// WithDetailf sets the occurrence-specific detail from a format string.
func (e *WeaveError) WithDetailf(format string, args ...any) *WeaveError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *WeaveError) WithSuggestion(s string) *WeaveError {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying error.
func (e *WeaveError) Wrap(err error) *WeaveError {
	e.Wrapped = err
	return e
}

// New creates a WeaveError from a registered error code.
func New(code string) *WeaveError {
	template, ok := registry[code]
	if !ok {
		return &WeaveError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &WeaveError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new WeaveError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *WeaveError {
	return &WeaveError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a WeaveError.
// Errors that already are WeaveErrors are returned unchanged.
func FromError(err error, code string) *WeaveError {
	if err == nil {
		return nil
	}
	var we *WeaveError
	if stderrors.As(err, &we) {
		return we
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a WeaveError with the given code.
func HasCode(err error, code string) bool {
	var we *WeaveError
	for err != nil {
		if stderrors.As(err, &we) {
			if we.Code == code {
				return true
			}
			err = we.Wrapped
			continue
		}
		return false
	}
	return false
}
