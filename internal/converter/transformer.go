// =============================================================================
// UBL Invoice Builder - Transformer Module
// =============================================================================
//
// This module applies the transformation rules of an invoice document to the
// rows of its line sheet before they reach the line builder. Rules tidy up
// what legacy exports produce: stray whitespace, currency symbols, coded item
// names that need a lookup.
//
// Rules run per column, in the order the actions are listed. A column with
// no rule passes through unchanged.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules   map[string][]config.TransformationAction
	regexps map[string]*regexp.Regexp
}

// NewTransformer creates a Transformer and compiles its regular expressions.
//
// RETURNS:
//   - The transformer.
//   - An error naming the first rule that cannot be used.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:   make(map[string][]config.TransformationAction, len(rules)),
		regexps: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if err := checkAction(action); err != nil {
				return nil, fmt.Errorf("rule for %q: %w", rule.Field, err)
			}
			if action.Type == "regex_replace" && action.Find != "" {
				if _, ok := t.regexps[action.Find]; ok {
					continue
				}
				re, err := regexp.Compile(action.Find)
				if err != nil {
					return nil, fmt.Errorf("rule for %q: invalid regex pattern: %w", rule.Field, err)
				}
				t.regexps[action.Find] = re
			}
		}
		t.rules[rule.Field] = append(t.rules[rule.Field], rule.Actions...)
	}

	return t, nil
}

// checkAction rejects unknown action types and malformed parameters.
func checkAction(action config.TransformationAction) error {
	switch action.Type {
	case "prepend_string", "append_string", "trim", "uppercase", "lowercase",
		"title_case", "replace", "regex_replace", "lookup", "strip_currency":
		return nil
	case "pad_left":
		if _, err := strconv.Atoi(action.Value); err != nil {
			return fmt.Errorf("pad_left length %q is not a number", action.Value)
		}
		if utf8.RuneCountInString(action.Pad) != 1 {
			return fmt.Errorf("pad_left pad %q must be one character", action.Pad)
		}
		return nil
	default:
		return fmt.Errorf("unknown transformation type %q", action.Type)
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies the rules for one column to a value.
func (t *Transformer) Transform(fieldName, value string) string {
	result := value
	for _, action := range t.rules[fieldName] {
		result = t.apply(result, action)
	}
	return result
}

// TransformRow applies every rule to a row and returns the transformed copy.
// The input row is not modified.
func (t *Transformer) TransformRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for field, value := range row {
		out[field] = t.Transform(field, value)
	}
	return out
}

// apply applies a single transformation action.
func (t *Transformer) apply(value string, action config.TransformationAction) string {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "title_case":
		return cases.Title(language.Und).String(value)

	case "replace":
		// EXAMPLE:
		//   Input: "Cotterpin;MIL-SPEC"
		//   Action: replace with find ";" and value ","
		//   Output: "Cotterpin,MIL-SPEC"
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		re, ok := t.regexps[action.Find]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)

	case "pad_left":
		// EXAMPLE:
		//   Input: "42"
		//   Action: pad_left with value "5" and pad "0"
		//   Output: "00042"
		length, _ := strconv.Atoi(action.Value)
		pad, _ := utf8.DecodeRuneInString(action.Pad)
		return PadLeft(value, length, pad)

	// =========================================================================
	// VALUE MAPPING
	// =========================================================================

	case "lookup":
		// Values missing from the table pass through.
		if mapped, ok := action.LookupTable[value]; ok {
			return mapped
		}
		return value

	case "strip_currency":
		// EXAMPLE:
		//   Input: "$1,234.50"
		//   Output: "1234.50"
		return stripCurrency(value)
	}

	return value
}

// stripCurrency drops everything but digits, the decimal point and a sign.
func stripCurrency(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == '(' || r == ')':
			// Accounting notation: (12.00) is negative.
			if r == '(' {
				b.WriteRune('-')
			}
		}
	}

	return b.String()
}

// PadLeft pads s on the left with padChar up to length runes.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
