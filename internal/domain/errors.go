// Package domain defines core types, interfaces, and errors for the
// data-quality platform.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ColumnNotFoundError indicates a test case references a column that does
// not exist on the target table. Validators convert it to an Aborted result.
type ColumnNotFoundError struct {
	Column   string
	TestCase string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("Cannot find the configured column %s for test case %s", e.Column, e.TestCase)
}

// MissingParameterError indicates a required test-case parameter is absent.
// It is a configuration error and, like ColumnNotFoundError, terminates the
// test case with an Aborted result rather than propagating.
type MissingParameterError struct {
	Parameter string
	TestCase  string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %s for test case %s", e.Parameter, e.TestCase)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
