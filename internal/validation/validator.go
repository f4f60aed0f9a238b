// =============================================================================
// UBL Invoice Builder - Scalar Validation Engine
// =============================================================================
//
// This module validates individual scalar values against the UBL schema role
// they are about to occupy. It is the only place leaf-level format rules
// live; the builders in internal/invoice never inspect raw strings
// themselves.
//
// VALIDATION STRATEGY:
//   Each role maps to a rule tag evaluated by go-playground/validator:
//   - Identifier roles: IdentifierType is an xsd:normalizedString, so CR, LF
//     and TAB are rejected along with characters XML cannot carry.
//   - Text roles:       TextType/NameType are xsd:string; the value must be
//                       non-blank and contain only XML characters.
//   - Amount roles:     the rule applies to the currencyID, which must be an
//                       ISO 4217 code known to golang.org/x/text/currency.
//   - Date roles:       DateType is xsd:date; the date must be set and fall
//                       inside years 0001-9999.
//
// CUSTOMIZATION:
//   - Override a role's rule with WithRule.
//   - Register additional tags with WithValidation.
//   - Replace the whole engine by implementing the Validator interface.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// =============================================================================
// VALIDATOR INTERFACE
// =============================================================================

// Validator turns raw caller input into validated scalar values for a given
// schema role. Implementations must be pure: the same input always yields
// the same result.
type Validator interface {
	Identifier(role Role, raw string) (Identifier, error)
	Date(role Role, raw time.Time) (Date, error)
	Text(role Role, raw string) (Text, error)
	Amount(role Role, value decimal.Decimal, currencyCode string) (Amount, error)
}

// =============================================================================
// CUSTOM RULE TAGS
// =============================================================================

const (
	// TagNormalized rejects CR, LF and TAB (xsd:normalizedString).
	TagNormalized = "ubl_normalized"

	// TagText rejects characters outside the XML Char production.
	TagText = "ubl_text"

	// TagNonBlank rejects strings made only of whitespace.
	TagNonBlank = "ubl_nonblank"

	// TagTrimmed rejects leading or trailing whitespace.
	TagTrimmed = "ubl_trimmed"
)

// DefaultRules returns the rule tag used for each string-bearing role.
// Date roles are checked structurally and have no tag.
func DefaultRules() map[Role]string {
	identifier := "required," + TagNonBlank + "," + TagNormalized + "," + TagTrimmed + "," + TagText
	text := "required," + TagNonBlank + "," + TagText
	amount := "required,iso4217"

	return map[Role]string{
		RoleInvoiceID:           identifier,
		RoleLineID:              identifier,
		RolePartyName:           text,
		RoleItemDescription:     text,
		RoleLineExtensionAmount: amount,
		RolePayableAmount:       amount,
	}
}

// =============================================================================
// SCHEMA VALIDATOR
// =============================================================================

// SchemaValidator is the default Validator. It is safe for concurrent use
// once constructed.
type SchemaValidator struct {
	engine *validator.Validate
	rules  map[Role]string
}

// Option configures a SchemaValidator.
type Option func(*SchemaValidator) error

// WithRule replaces the rule tag used for a role.
func WithRule(role Role, tag string) Option {
	return func(v *SchemaValidator) error {
		v.rules[role] = tag
		return nil
	}
}

// WithValidation registers an additional rule tag.
func WithValidation(tag string, fn validator.Func) Option {
	return func(v *SchemaValidator) error {
		return v.engine.RegisterValidation(tag, fn)
	}
}

// NewSchemaValidator creates a SchemaValidator with the default rules.
//
// RETURNS:
//   - The validator.
//   - An error if a custom tag cannot be registered.
func NewSchemaValidator(opts ...Option) (*SchemaValidator, error) {
	engine := validator.New(validator.WithRequiredStructEnabled())

	custom := map[string]validator.Func{
		TagNormalized: isNormalized,
		TagText:       isXMLText,
		TagNonBlank:   isNonBlank,
		TagTrimmed:    isTrimmed,
	}
	for tag, fn := range custom {
		if err := engine.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}

	v := &SchemaValidator{
		engine: engine,
		rules:  DefaultRules(),
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// MustSchemaValidator is like NewSchemaValidator but panics on error.
func MustSchemaValidator(opts ...Option) *SchemaValidator {
	v, err := NewSchemaValidator(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Identifier validates an IdentifierType value.
func (v *SchemaValidator) Identifier(role Role, raw string) (Identifier, error) {
	if err := v.check(role, raw); err != nil {
		return Identifier{}, err
	}
	return Identifier{value: raw}, nil
}

// Text validates a TextType or NameType value.
func (v *SchemaValidator) Text(role Role, raw string) (Text, error) {
	if err := v.check(role, raw); err != nil {
		return Text{}, err
	}
	return Text{value: raw}, nil
}

// Date validates a DateType value. The time of day and location are dropped.
func (v *SchemaValidator) Date(role Role, raw time.Time) (Date, error) {
	if raw.IsZero() {
		return Date{}, &ScalarValidationError{
			Role:    role,
			Rule:    "required",
			Message: "date is not set",
		}
	}

	if year := raw.Year(); year < 1 || year > 9999 {
		return Date{}, &ScalarValidationError{
			Role:    role,
			Value:   raw.String(),
			Rule:    "xsd:date",
			Message: fmt.Sprintf("year %d is outside 0001-9999", year),
		}
	}

	y, m, d := raw.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
}

// Amount validates an AmountType value and its currencyID.
func (v *SchemaValidator) Amount(role Role, value decimal.Decimal, currencyCode string) (Amount, error) {
	if err := v.check(role, currencyCode); err != nil {
		return Amount{}, err
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return Amount{}, &ScalarValidationError{
			Role:    role,
			Value:   currencyCode,
			Rule:    "currency",
			Message: "unknown currency code",
			Err:     err,
		}
	}

	return Amount{value: value, currency: unit, code: unit.String()}, nil
}

// check evaluates the role's rule tag against a raw string.
func (v *SchemaValidator) check(role Role, raw string) error {
	tag, ok := v.rules[role]
	if !ok {
		return &ScalarValidationError{
			Role:    role,
			Value:   raw,
			Rule:    "role",
			Message: "no rule registered for this role",
		}
	}

	err := v.engine.Var(raw, tag)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &ScalarValidationError{
			Role:    role,
			Value:   raw,
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
			Err:     err,
		}
	}

	return &ScalarValidationError{
		Role:    role,
		Value:   raw,
		Rule:    tag,
		Message: "rule could not be evaluated",
		Err:     err,
	}
}

// ruleMessage returns a human-readable message for a failed rule.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case TagNonBlank:
		return "value must not be blank"
	case TagNormalized:
		return "value must not contain carriage returns, line feeds or tabs"
	case TagTrimmed:
		return "value must not start or end with whitespace"
	case TagText:
		return "value contains characters not allowed in XML text"
	case "iso4217":
		return "currency must be an ISO 4217 code"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "failed rule " + fe.Tag()
	}
}

// =============================================================================
// RULE FUNCTIONS
// =============================================================================

func isNormalized(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), "\r\n\t")
}

func isNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func isTrimmed(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimSpace(s) == s
}

// isXMLText implements the XML 1.0 Char production.
func isXMLText(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == 0x9 || r == 0xA || r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// INPUT PARSING
// =============================================================================

// ParseDate parses a YYYY-MM-DD string for a date role. Drivers use it to
// turn literal input into the time.Time the builders accept.
func ParseDate(role Role, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &ScalarValidationError{
			Role:    role,
			Value:   raw,
			Rule:    "xsd:date",
			Message: "date must use the YYYY-MM-DD form",
			Err:     err,
		}
	}
	return t, nil
}

// ParseAmount parses a decimal string for an amount role.
func ParseAmount(role Role, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, &ScalarValidationError{
			Role:    role,
			Value:   raw,
			Rule:    "xsd:decimal",
			Message: "amount is not a decimal number",
			Err:     err,
		}
	}
	return d, nil
}
