package transform

import "fmt"

// InvalidInputError reports input that cannot be transformed: text missing or
// below the minimum length for the entry point used, or a parameter outside
// its allowed range. It is always returned synchronously and never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInputf(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
