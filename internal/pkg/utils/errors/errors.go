// Package errors provides error utilities used across the project.
// It replaces direct usage of the standard "errors" and "fmt" packages,
// so all errors are created in one place and can be extended centrally.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the supplied message.
func New(message string) error {
	return errors.New(message)
}

// Errorf formats an error, the %w verb is supported.
func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Is reports whether any error in the chain matches the target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in the chain that matches the target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// PrefixError adds a prefix to the error message, the original error is preserved in the chain.
func PrefixError(err error, prefix string) error {
	if err == nil {
		return nil
	}
	return &prefixError{prefix: prefix, err: err}
}

// PrefixErrorf adds a formatted prefix to the error message.
func PrefixErrorf(err error, format string, a ...any) error {
	return PrefixError(err, fmt.Sprintf(format, a...))
}

type prefixError struct {
	prefix string
	err    error
}

func (e *prefixError) Error() string {
	return e.prefix + ": " + e.err.Error()
}

func (e *prefixError) Unwrap() error {
	return e.err
}
