// =============================================================================
// UBL Invoice Builder - Invoice Builder
// =============================================================================
//
// This module assembles the Invoice aggregate root.
//
// BUILD SEQUENCE:
//   1. NewInvoice validates the identifier, the issue date and both period
//      dates, then validates the InvoicePeriod as a whole.
//   2. SetSupplier / SetCustomer attach the parties.
//   3. SetLines attaches the lines and the LegalMonetaryTotal computed from
//      the accumulator's total and currency.
//   4. Finalize checks every part is present and freezes the invoice.
//
// VALIDATION:
//   Leaf values are validated one at a time (ScalarValidationError), then
//   composed structures are validated as a whole (AggregateValidationError).
//   The first failure aborts the call; nothing partial is returned.
//
// =============================================================================

package invoice

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder creates invoices, parties and line accumulators that share one
// scalar validator.
type Builder struct {
	validator validation.Validator
}

// NewBuilder creates a Builder. A nil validator selects the default
// validation.SchemaValidator.
func NewBuilder(v validation.Validator) *Builder {
	if v == nil {
		v = validation.MustSchemaValidator()
	}
	return &Builder{validator: v}
}

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// Period is the invoice billing period.
type Period struct {
	start validation.Date
	end   validation.Date
}

// Start returns the first day of the period.
func (p Period) Start() validation.Date {
	return p.start
}

// End returns the last day of the period.
func (p Period) End() validation.Date {
	return p.end
}

// validate checks the period as a whole once both dates are set.
func (p Period) validate() error {
	if p.start.IsZero() || p.end.IsZero() {
		return &validation.AggregateValidationError{
			Aggregate: "InvoicePeriod",
			Rule:      "complete",
			Message:   "start and end dates are both required",
		}
	}
	if p.start.After(p.end) {
		return &validation.AggregateValidationError{
			Aggregate: "InvoicePeriod",
			Rule:      "start<=end",
			Message:   fmt.Sprintf("period starts %s after it ends %s", p.start, p.end),
		}
	}
	return nil
}

// MonetaryTotal is the document's LegalMonetaryTotal.
type MonetaryTotal struct {
	payable validation.Amount
}

// PayableAmount returns the amount payable.
func (m MonetaryTotal) PayableAmount() validation.Amount {
	return m.payable
}

// Invoice is the aggregate root.
type Invoice struct {
	validator validation.Validator

	id        validation.Identifier
	issueDate validation.Date
	period    Period

	supplier RoleParty
	customer RoleParty
	lines    []Line
	total    MonetaryTotal

	finalized bool
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// NewInvoice creates an invoice with its header fields set.
//
// PARAMETERS:
//   - id: The invoice identifier.
//   - issueDate: The issue date.
//   - periodStart: The first day of the billing period.
//   - periodEnd: The last day of the billing period.
//
// RETURNS:
//   - An invoice with no parties, lines or total.
//   - A *FieldError naming the first field that failed.
func (b *Builder) NewInvoice(id string, issueDate, periodStart, periodEnd time.Time) (*Invoice, error) {
	identifier, err := b.validator.Identifier(validation.RoleInvoiceID, id)
	if err != nil {
		return nil, &FieldError{Component: "Invoice", Field: "ID", Err: err}
	}

	issued, err := b.validator.Date(validation.RoleIssueDate, issueDate)
	if err != nil {
		return nil, &FieldError{Component: "Invoice", Field: "IssueDate", Err: err}
	}

	start, err := b.validator.Date(validation.RolePeriodStartDate, periodStart)
	if err != nil {
		return nil, &FieldError{Component: "InvoicePeriod", Field: "StartDate", Err: err}
	}

	end, err := b.validator.Date(validation.RolePeriodEndDate, periodEnd)
	if err != nil {
		return nil, &FieldError{Component: "InvoicePeriod", Field: "EndDate", Err: err}
	}

	period := Period{start: start, end: end}
	if err := period.validate(); err != nil {
		return nil, &FieldError{Component: "Invoice", Field: "InvoicePeriod", Err: err}
	}

	return &Invoice{
		validator: b.validator,
		id:        identifier,
		issueDate: issued,
		period:    period,
	}, nil
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// SetSupplier attaches the selling party.
func (inv *Invoice) SetSupplier(p RoleParty) error {
	return inv.setParty(&inv.supplier, p, SupplierRole)
}

// SetCustomer attaches the buying party.
func (inv *Invoice) SetCustomer(p RoleParty) error {
	return inv.setParty(&inv.customer, p, CustomerRole)
}

func (inv *Invoice) setParty(dst *RoleParty, p RoleParty, want PartyRole) error {
	if inv.finalized {
		return ErrInvoiceFinalized
	}
	if p.Role() != want {
		return &PartyValidationError{
			Role:  want,
			Field: "role",
			Err: &validation.AggregateValidationError{
				Aggregate: string(want),
				Rule:      "role",
				Message:   fmt.Sprintf("party was built as %q", p.Role()),
			},
		}
	}
	*dst = p
	return nil
}

// SetLines attaches the accumulated lines and the LegalMonetaryTotal.
//
// Every line already carries the accumulator's currency (Lines.Add checks
// it), so the total is validated in that currency. On error the invoice is
// left unchanged.
func (inv *Invoice) SetLines(lines *Lines) error {
	if inv.finalized {
		return ErrInvoiceFinalized
	}

	if lines == nil {
		return &FieldError{
			Component: "InvoiceLine",
			Field:     "lines",
			Err: &validation.AggregateValidationError{
				Aggregate: "InvoiceLine",
				Rule:      "required",
				Message:   "no line accumulator given",
			},
		}
	}

	payable, err := inv.validator.Amount(validation.RolePayableAmount, lines.Total(), lines.Currency())
	if err != nil {
		return &FieldError{Component: "LegalMonetaryTotal", Field: "PayableAmount", Err: err}
	}

	inv.lines = lines.Items()
	inv.total = MonetaryTotal{payable: payable}

	return nil
}

// Finalize checks the invoice is complete and freezes it.
// Calling Finalize on a finalized invoice is a no-op.
func (inv *Invoice) Finalize() error {
	if inv.finalized {
		return nil
	}

	var missing string
	switch {
	case inv.supplier.IsZero():
		missing = string(SupplierRole)
	case inv.customer.IsZero():
		missing = string(CustomerRole)
	case len(inv.lines) == 0:
		missing = "InvoiceLine"
	case inv.total.payable.IsZero():
		missing = "LegalMonetaryTotal"
	}

	if missing != "" {
		return fmt.Errorf("%w: %w", ErrIncompleteInvoice, &validation.AggregateValidationError{
			Aggregate: "Invoice",
			Rule:      "complete",
			Message:   missing + " is not set",
		})
	}

	inv.finalized = true
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the invoice identifier.
func (inv *Invoice) ID() validation.Identifier { return inv.id }

// IssueDate returns the issue date.
func (inv *Invoice) IssueDate() validation.Date { return inv.issueDate }

// Period returns the billing period.
func (inv *Invoice) Period() Period { return inv.period }

// Supplier returns the selling party.
func (inv *Invoice) Supplier() RoleParty { return inv.supplier }

// Customer returns the buying party.
func (inv *Invoice) Customer() RoleParty { return inv.customer }

// LegalMonetaryTotal returns the document total.
func (inv *Invoice) LegalMonetaryTotal() MonetaryTotal { return inv.total }

// Finalized reports whether Finalize has succeeded.
func (inv *Invoice) Finalized() bool { return inv.finalized }

// Lines returns a copy of the invoice lines in order.
func (inv *Invoice) Lines() []Line {
	lines := make([]Line, len(inv.lines))
	copy(lines, inv.lines)
	return lines
}
