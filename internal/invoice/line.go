// =============================================================================
// UBL Invoice Builder - Line Builder
// =============================================================================
//
// Lines accumulates invoice lines in one currency. Each successful Add
// appends a line whose ID is its 1-based position and adds its amount to
// the running total.
//
// ATOMICITY:
//   Add validates the description, the line ID and the amount before it
//   touches any state. A failed Add leaves the line sequence and the total
//   exactly as they were, and the next successful Add reuses the ID the
//   failed call would have taken.
//
// CONCURRENCY:
//   Lines is not safe for concurrent use. Build one invoice per goroutine.
//
// =============================================================================

package invoice

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
	"github.com/shopspring/decimal"
)

// Line is one billable invoice line.
type Line struct {
	id     validation.Identifier
	item   validation.Text
	amount validation.Amount
}

// ID returns the line identifier.
func (l Line) ID() validation.Identifier {
	return l.id
}

// Description returns the item description.
func (l Line) Description() validation.Text {
	return l.item
}

// Amount returns the line extension amount.
func (l Line) Amount() validation.Amount {
	return l.amount
}

// Lines is the line accumulator.
type Lines struct {
	validator validation.Validator
	currency  string
	items     []Line
	total     decimal.Decimal
}

// Lines creates an empty accumulator fixed to one currency.
//
// RETURNS:
//   - The accumulator.
//   - A *FieldError if the currency code is not valid.
func (b *Builder) Lines(currencyCode string) (*Lines, error) {
	amount, err := b.validator.Amount(validation.RoleLineExtensionAmount, decimal.Zero, currencyCode)
	if err != nil {
		return nil, &FieldError{Component: "InvoiceLine", Field: "currencyID", Err: err}
	}

	return &Lines{
		validator: b.validator,
		currency:  amount.CurrencyCode(),
		total:     decimal.Zero,
	}, nil
}

// Add appends a line.
//
// PARAMETERS:
//   - description: The item description.
//   - amount: The line extension amount in the accumulator's currency.
//
// RETURNS:
//   - A *FieldError naming the line and field on failure. Nothing is
//     appended and the total is unchanged when an error is returned.
func (l *Lines) Add(description string, amount decimal.Decimal) error {
	position := len(l.items) + 1
	component := fmt.Sprintf("InvoiceLine %d", position)

	item, err := l.validator.Text(validation.RoleItemDescription, description)
	if err != nil {
		return &FieldError{Component: component, Field: "Item/Description", Err: err}
	}

	id, err := l.validator.Identifier(validation.RoleLineID, strconv.Itoa(position))
	if err != nil {
		return &FieldError{Component: component, Field: "ID", Err: err}
	}

	lineAmount, err := l.validator.Amount(validation.RoleLineExtensionAmount, amount, l.currency)
	if err != nil {
		return &FieldError{Component: component, Field: "LineExtensionAmount", Err: err}
	}

	l.items = append(l.items, Line{id: id, item: item, amount: lineAmount})
	l.total = l.total.Add(amount)

	return nil
}

// AddFloat appends a line from a binary floating point amount. NaN and the
// infinities are rejected because they have no decimal representation.
func (l *Lines) AddFloat(description string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return &FieldError{
			Component: fmt.Sprintf("InvoiceLine %d", len(l.items)+1),
			Field:     "LineExtensionAmount",
			Err: &validation.ScalarValidationError{
				Role:    validation.RoleLineExtensionAmount,
				Value:   strconv.FormatFloat(amount, 'g', -1, 64),
				Rule:    "finite",
				Message: "amount must be a finite number",
			},
		}
	}
	return l.Add(description, decimal.NewFromFloat(amount))
}

// Currency returns the accumulator's ISO 4217 currency code.
func (l *Lines) Currency() string {
	return l.currency
}

// Total returns the sum of all line amounts.
func (l *Lines) Total() decimal.Decimal {
	return l.total
}

// Len returns the number of lines.
func (l *Lines) Len() int {
	return len(l.items)
}

// Items returns a copy of the lines in insertion order.
func (l *Lines) Items() []Line {
	items := make([]Line, len(l.items))
	copy(items, l.items)
	return items
}
