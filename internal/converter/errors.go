package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/jsonwriter"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
	"github.com/ginjaninja78/UBL-invoice-builder/pkg/utils"
	"go.uber.org/zap"
)

// RowError reports a lines_file row that could not become an invoice line.
type RowError struct {
	// File is the lines_file path.
	File string

	// Row is the 1-based row in File.
	Row int

	// Err is the line builder failure.
	Err error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

// Unwrap returns the line builder failure.
func (e *RowError) Unwrap() error {
	return e.Err
}

// Describe breaks an error down into an error log entry.
func Describe(fileName string, err error) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     fileName,
		ErrorType:    errorType(err),
		ErrorMessage: err.Error(),
	}

	var fieldErr *invoice.FieldError
	var partyErr *invoice.PartyValidationError
	switch {
	case errors.As(err, &fieldErr):
		entry.Component = fieldErr.Component
		entry.FieldName = fieldErr.Field
	case errors.As(err, &partyErr):
		entry.Component = string(partyErr.Role)
		entry.FieldName = partyErr.Field
	}

	var scalarErr *validation.ScalarValidationError
	var aggregateErr *validation.AggregateValidationError
	switch {
	case errors.As(err, &scalarErr):
		entry.FieldValue = scalarErr.Value
		entry.Rule = scalarErr.Rule
		if entry.FieldName == "" {
			entry.FieldName = string(scalarErr.Role)
		}
	case errors.As(err, &aggregateErr):
		entry.Rule = aggregateErr.Rule
		if entry.Component == "" {
			entry.Component = aggregateErr.Aggregate
		}
	}

	var rowErr *RowError
	if errors.As(err, &rowErr) {
		entry.RowNumber = rowErr.Row
	}

	return entry
}

// errorType names the most specific failure category in err's chain.
func errorType(err error) string {
	var scalarErr *validation.ScalarValidationError
	var aggregateErr *validation.AggregateValidationError
	var serializationErr *jsonwriter.SerializationError

	switch {
	case errors.As(err, &scalarErr):
		return "ScalarValidationError"
	case errors.As(err, &aggregateErr):
		return "AggregateValidationError"
	case errors.As(err, &serializationErr):
		return "SerializationError"
	default:
		return "ProcessingError"
	}
}

// IsValidationError reports whether err is a scalar or aggregate
// validation failure.
func IsValidationError(err error) bool {
	switch errorType(err) {
	case "ScalarValidationError", "AggregateValidationError":
		return true
	}
	return false
}

// logFields turns an error log entry into structured log fields.
func logFields(entry utils.ErrorLogEntry) []zap.Field {
	fields := []zap.Field{zap.String("error_type", entry.ErrorType)}
	if entry.Component != "" {
		fields = append(fields, zap.String("component", entry.Component))
	}
	if entry.FieldName != "" {
		fields = append(fields, zap.String("field", entry.FieldName))
	}
	if entry.FieldValue != "" {
		fields = append(fields, zap.String("value", entry.FieldValue))
	}
	if entry.Rule != "" {
		fields = append(fields, zap.String("rule", entry.Rule))
	}
	if entry.RowNumber > 0 {
		fields = append(fields, zap.Int("row", entry.RowNumber))
	}
	return fields
}
