// =============================================================================
// UBL Invoice Builder - JSON Writer Module
// =============================================================================
//
// This module serializes a finalized invoice into the UBL JSON document.
// The whole tree is rendered in one pass into memory; nothing is written
// until serialization has succeeded, and any failure aborts the document.
//
// OUTPUT:
//   - Compact by default (no insignificant whitespace) so identical invoices
//     produce byte-identical documents.
//   - HTML escaping is disabled: "<", ">" and "&" stay literal.
//
// CUSTOMIZATION:
//   - Set GenerateOptions.Indent for human-readable output.
//   - Set GenerateOptions.TrailingNewline when writing to a terminal.
//
// =============================================================================

package jsonwriter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
)

// =============================================================================
// SERIALIZATION ERROR
// =============================================================================

// SerializationError reports a finished tree that could not be rendered.
type SerializationError struct {
	// Stage is "wrap" or "encode".
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize invoice (%s): %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// JSON GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for JSON generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "" (compact)
	Indent string

	// TrailingNewline appends "\n" after the document.
	// Default: false
	TrailingNewline bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{}
}

// =============================================================================
// JSON GENERATION FUNCTIONS
// =============================================================================

// Generate wraps and serializes a finalized invoice.
//
// PARAMETERS:
//   - inv: The finalized invoice.
//
// RETURNS:
//   - The UBL JSON document.
//   - A *SerializationError if the invoice cannot be rendered.
func Generate(inv *invoice.Invoice) ([]byte, error) {
	return GenerateWithOptions(inv, DefaultGenerateOptions())
}

// GenerateWithOptions serializes a finalized invoice with custom options.
func GenerateWithOptions(inv *invoice.Invoice, options GenerateOptions) ([]byte, error) {
	envelope, err := Wrap(inv)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if options.Indent != "" {
		encoder.SetIndent("", options.Indent)
	}

	if err := encoder.Encode(envelope); err != nil {
		return nil, &SerializationError{Stage: "encode", Err: err}
	}

	// Encode always terminates the value with a newline.
	out := bytes.TrimSuffix(buffer.Bytes(), []byte("\n"))
	if options.TrailingNewline {
		out = append(out, '\n')
	}

	return out, nil
}
