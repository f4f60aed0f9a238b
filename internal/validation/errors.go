// =============================================================================
// UBL Invoice Builder - Validation Errors
// =============================================================================
//
// Two error kinds come out of validation:
//   - ScalarValidationError:    a single leaf value failed its schema role
//                               (bad identifier, malformed date, unknown
//                               currency, invalid text).
//   - AggregateValidationError: a composed structure is inconsistent even
//                               though every leaf inside it was valid
//                               (e.g. an invoice period that ends before it
//                               starts).
//
// Both are returned as pointers so callers can use errors.As.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// SCALAR VALIDATION ERROR
// =============================================================================

// ScalarValidationError represents a leaf value that failed its schema role.
type ScalarValidationError struct {
	// Role is the schema position the value was validated for.
	Role Role

	// Value is the raw value that failed validation.
	Value string

	// Rule is the rule that was violated (e.g. "required", "iso4217").
	Rule string

	// Message is a human-readable reason.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ScalarValidationError) Error() string {
	return fmt.Sprintf("%s: %s [%s] (value: '%s')", e.Role, e.Message, e.Rule, e.Value)
}

// Unwrap returns the underlying cause.
func (e *ScalarValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// AGGREGATE VALIDATION ERROR
// =============================================================================

// AggregateValidationError represents a composed structure that violates a
// structural constraint.
type AggregateValidationError struct {
	// Aggregate is the UBL name of the structure (e.g. "InvoicePeriod").
	Aggregate string

	// Rule is the structural rule that was violated.
	Rule string

	// Message is a human-readable reason.
	Message string
}

// Error implements the error interface.
func (e *AggregateValidationError) Error() string {
	return fmt.Sprintf("%s: %s [%s]", e.Aggregate, e.Message, e.Rule)
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats errors for display or logging.
//
// PARAMETERS:
//   - errs: The errors to format.
//
// RETURNS:
//   - A formatted string listing every error on its own numbered line.
func FormatErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errs)))

	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
