package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const trivialYAML = `id: "123"
issue_date: 2011-09-22
period: {start: 2011-08-01, end: 2011-08-31}
currency: CAD
supplier: {name: CustomCotterPins}
customer: {name: NorthAmericanVeeblefetzer}
lines:
  - description: "Cotterpin,MIL-SPEC"
    amount: 100.00
`

const trivialJSON = `{"id":"123","issue_date":"2011-09-22",` +
	`"period":{"start":"2011-08-01","end":"2011-08-31"},"currency":"CAD",` +
	`"supplier":{"name":"CustomCotterPins"},"customer":{"name":"NorthAmericanVeeblefetzer"},` +
	`"lines":[{"description":"Cotterpin,MIL-SPEC","amount":100.00}]}`

func newTestServer(opts ...Option) *Server {
	return New(&config.MainConfig{
		OutputFormat: "json",
		MaxBodyBytes: 4096,
	}, opts...)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBuildInvoice(t *testing.T) {
	s := newTestServer()

	t.Run("yaml document to ubl json", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/v1/invoices", trivialYAML)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "123", w.Header().Get("X-Invoice-ID"))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Contains(t, w.Body.String(), `"PayableAmount":[{"AmountContent":100.00,"AmountCurrencyIdentifier":"CAD"}]`)
	})

	t.Run("json document", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/v1/invoices", trivialJSON)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"IdentifierContent":"123"`)
	})

	t.Run("xml format", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/v1/invoices?format=xml", trivialYAML)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), `<cbc:PayableAmount currencyID="CAD">100.00</cbc:PayableAmount>`)
	})

	t.Run("indent", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/v1/invoices?indent=true", trivialYAML)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "\n  \"_D\"")
	})

	t.Run("caller request id is kept", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader(trivialYAML))
		req.Header.Set(RequestIDHeader, "req-42")
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			body   string
			status int
			code   string
		}{
			{"unknown format", "/v1/invoices?format=pdf", trivialYAML, http.StatusBadRequest, ErrCodeBadRequest},
			{"bad indent", "/v1/invoices?indent=maybe", trivialYAML, http.StatusBadRequest, ErrCodeBadRequest},
			{"malformed document", "/v1/invoices", "id: [", http.StatusBadRequest, ErrCodeInvalidDocument},
			{"lines file", "/v1/invoices", trivialYAML + "lines_file: /etc/passwd.csv\n", http.StatusBadRequest, ErrCodeLinesFile},
			{"too large", "/v1/invoices", trivialYAML + strings.Repeat("#", 5000), http.StatusRequestEntityTooLarge, ErrCodeTooLarge},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := do(t, s, http.MethodPost, tt.target, tt.body)

				assert.Equal(t, tt.status, w.Code)
				resp := decodeResponse(t, w)
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.code, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			})
		}
	})

	t.Run("validation failure names the field", func(t *testing.T) {
		body := strings.Replace(trivialYAML, "amount: 100.00", "amount: ten", 1)
		w := do(t, s, http.MethodPost, "/v1/invoices", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "ScalarValidationError", resp.Error.ErrorType)
		assert.Equal(t, "InvoiceLine 1", resp.Error.Component)
		assert.Equal(t, "LineExtensionAmount", resp.Error.Field)
		assert.Equal(t, "ten", resp.Error.Value)
		assert.Equal(t, "xsd:decimal", resp.Error.Rule)
	})
}

func TestValidateInvoice(t *testing.T) {
	s := newTestServer()

	t.Run("summary", func(t *testing.T) {
		body := trivialYAML + `  - description: Washer
    amount: 0.50
`
		w := do(t, s, http.MethodPost, "/v1/invoices/validate", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool
			Data    InvoiceSummary
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, InvoiceSummary{InvoiceID: "123", Lines: 2, PayableAmount: "100.50", Currency: "CAD"}, resp.Data)
	})

	t.Run("aggregate failure", func(t *testing.T) {
		body := strings.Replace(trivialYAML, "start: 2011-08-01, end: 2011-08-31", "start: 2011-09-01, end: 2011-08-31", 1)
		w := do(t, s, http.MethodPost, "/v1/invoices/validate", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "AggregateValidationError", resp.Error.ErrorType)
		assert.Equal(t, "start<=end", resp.Error.Rule)
	})
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(WithVersion("1.2.3"))

	w := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, w.Body.String(), `"ubl_version":"2.1"`)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := newTestServer(WithLogger(zap.New(core)))

	do(t, s, http.MethodPost, "/v1/invoices", trivialYAML)
	do(t, s, http.MethodPost, "/v1/invoices", "id: [")

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, int64(http.StatusOK), completed[0].ContextMap()["status"])

	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
	assert.Equal(t, "/v1/invoices", rejected[0].ContextMap()["path"])

	assert.Len(t, logs.FilterMessage("invoice built").All(), 1)
}
