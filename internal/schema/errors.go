package schema

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every structural violation found in one pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("envelope validation failed: %s", strings.Join(e.Violations, "; "))
}

// RangeError reports a numeric field outside its allowed closed interval.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %v is not within [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// RequiredFieldError reports a field that must be present and non-empty
// under the current business rules.
type RequiredFieldError struct {
	Field  string
	Reason string
}

func (e *RequiredFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("required field %q is missing or empty", e.Field)
	}
	return fmt.Sprintf("required field %q is missing or empty: %s", e.Field, e.Reason)
}
