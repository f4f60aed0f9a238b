package server

import (
	"errors"
	"net/http"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/converter"
	"github.com/gin-gonic/gin"
)

// Error codes returned in ErrorInfo.Code.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeLinesFile       = "LINES_FILE_NOT_ALLOWED"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeTooLarge        = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// Response is the JSON envelope for every non-document response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request. The location fields are set for
// validation failures.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	Component string `json:"component,omitempty"`
	Field     string `json:"field,omitempty"`
	Value     string `json:"value,omitempty"`
	Rule      string `json:"rule,omitempty"`
}

// InvoiceSummary is returned by the validate endpoint.
type InvoiceSummary struct {
	InvoiceID     string `json:"invoice_id"`
	Lines         int    `json:"lines"`
	PayableAmount string `json:"payable_amount"`
	Currency      string `json:"currency"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: c.GetString(requestIDKey),
		},
	})
}

// abortWithBuildError maps a build failure to a response. Validation
// failures are the caller's fault and carry their location.
func abortWithBuildError(c *gin.Context, err error) {
	_ = c.Error(err)

	if !converter.IsValidationError(err) {
		abortWithError(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	entry := converter.Describe("", err)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   err.Error(),
			RequestID: c.GetString(requestIDKey),
			ErrorType: entry.ErrorType,
			Component: entry.Component,
			Field:     entry.FieldName,
			Value:     entry.FieldValue,
			Rule:      entry.Rule,
		},
	})
}

// isTooLarge reports whether reading the body hit the BodyLimit cap.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
