// =============================================================================
// UBL Invoice Builder - Builder Errors
// =============================================================================
//
// Builder errors name the component and field that failed and wrap the
// validation error that caused the failure, so callers can both print a
// precise message and use errors.As to reach the underlying
// validation.ScalarValidationError or validation.AggregateValidationError.
//
// =============================================================================

package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrInvoiceFinalized is returned when a finalized invoice is modified.
	ErrInvoiceFinalized = errors.New("invoice is finalized and cannot be modified")

	// ErrIncompleteInvoice is returned when Finalize finds a missing part.
	ErrIncompleteInvoice = errors.New("invoice is incomplete")
)

// PartyValidationError reports a party that could not be built.
type PartyValidationError struct {
	// Role is the role the party was being built for.
	Role PartyRole

	// Field is the UBL path of the offending field (e.g. "PartyName/Name").
	Field string

	// Err is the validation failure.
	Err error
}

// Error implements the error interface.
func (e *PartyValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %v", e.Role, e.Field, e.Err)
}

// Unwrap returns the validation failure.
func (e *PartyValidationError) Unwrap() error {
	return e.Err
}

// FieldError reports an invoice, line or total field that failed validation.
type FieldError struct {
	// Component is the UBL aggregate being built (e.g. "Invoice", "InvoiceLine 2").
	Component string

	// Field is the offending field (e.g. "IssueDate").
	Field string

	// Err is the validation failure.
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %s: %v", e.Component, e.Field, e.Err)
}

// Unwrap returns the validation failure.
func (e *FieldError) Unwrap() error {
	return e.Err
}
