// =============================================================================
// UBL Invoice Builder - Schema Roles and Validated Values
// =============================================================================
//
// A schema role names the element position a scalar value occupies in the
// UBL Invoice document. Roles that share an underlying type (IssueDate,
// StartDate, EndDate are all DateType) are still distinct so that each one
// can carry its own rule and report its own name on failure.
//
// The validated value types below can only be obtained from a Validator.
// Their zero values are "unset" and are never produced by a successful
// validation.
//
// =============================================================================

package validation

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// =============================================================================
// SCHEMA ROLES
// =============================================================================

// Role identifies the UBL element position a scalar value is validated for.
type Role string

const (
	// RoleInvoiceID is cbc:ID on the Invoice.
	RoleInvoiceID Role = "Invoice/ID"

	// RoleIssueDate is cbc:IssueDate on the Invoice.
	RoleIssueDate Role = "Invoice/IssueDate"

	// RolePeriodStartDate is cbc:StartDate inside cac:InvoicePeriod.
	RolePeriodStartDate Role = "InvoicePeriod/StartDate"

	// RolePeriodEndDate is cbc:EndDate inside cac:InvoicePeriod.
	RolePeriodEndDate Role = "InvoicePeriod/EndDate"

	// RolePartyName is cbc:Name inside cac:PartyName.
	RolePartyName Role = "PartyName/Name"

	// RoleLineID is cbc:ID on a cac:InvoiceLine.
	RoleLineID Role = "InvoiceLine/ID"

	// RoleItemDescription is cbc:Description inside cac:Item.
	RoleItemDescription Role = "Item/Description"

	// RoleLineExtensionAmount is cbc:LineExtensionAmount on a cac:InvoiceLine.
	RoleLineExtensionAmount Role = "InvoiceLine/LineExtensionAmount"

	// RolePayableAmount is cbc:PayableAmount inside cac:LegalMonetaryTotal.
	RolePayableAmount Role = "LegalMonetaryTotal/PayableAmount"
)

// DateLayout is the lexical form of xsd:date used by UBL DateType.
const DateLayout = "2006-01-02"

// =============================================================================
// IDENTIFIER
// =============================================================================

// Identifier is a validated UBL IdentifierType content value.
type Identifier struct {
	value string
}

// String returns the identifier content.
func (i Identifier) String() string {
	return i.value
}

// IsZero reports whether the identifier was never validated.
func (i Identifier) IsZero() bool {
	return i.value == ""
}

// =============================================================================
// DATE
// =============================================================================

// Date is a validated UBL DateType value. Only the calendar date is kept.
type Date struct {
	t time.Time
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// IsZero reports whether the date was never validated.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// =============================================================================
// TEXT
// =============================================================================

// Text is a validated UBL TextType (or NameType) content value.
type Text struct {
	value string
}

// String returns the text content.
func (t Text) String() string {
	return t.value
}

// IsZero reports whether the text was never validated.
func (t Text) IsZero() bool {
	return t.value == ""
}

// =============================================================================
// AMOUNT
// =============================================================================

// Amount is a validated UBL AmountType: a decimal value with a currencyID.
type Amount struct {
	value    decimal.Decimal
	currency currency.Unit
	code     string
}

// Value returns the decimal amount.
func (a Amount) Value() decimal.Decimal {
	return a.value
}

// Currency returns the ISO 4217 currency unit.
func (a Amount) Currency() currency.Unit {
	return a.currency
}

// CurrencyCode returns the three-letter ISO 4217 code.
func (a Amount) CurrencyCode() string {
	return a.code
}

// IsZero reports whether the amount was never validated.
// A validated amount of 0.00 is not zero in this sense.
func (a Amount) IsZero() bool {
	return a.code == ""
}

// Format renders the value with at least the currency's minor-unit scale.
// Precision beyond the minor unit is kept rather than rounded away.
//
// EXAMPLE:
//
//	100 CAD    -> "100.00"
//	100.125 CAD -> "100.125"
//	1000 JPY   -> "1000"
func (a Amount) Format() string {
	scale, _ := currency.Standard.Rounding(a.currency)
	if exp := int(-a.value.Exponent()); exp > scale {
		scale = exp
	}
	return a.value.StringFixed(int32(scale))
}
