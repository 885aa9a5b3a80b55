// Package errx attaches context to sentinel errors while keeping them
// matchable with errors.Is.
package errx

import "fmt"

// Wrap returns an error that matches both sentinel and cause.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// With appends a formatted suffix to sentinel. The format may itself contain
// %w verbs; every wrapped error stays reachable through errors.Is.
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}
