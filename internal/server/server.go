// =============================================================================
// UBL Invoice Builder - HTTP Server
// =============================================================================
//
// This module exposes the invoice builder over HTTP. A client posts an
// invoice document (YAML or JSON) and receives the UBL document, or the
// field that rejected it.
//
// ROUTES:
//   GET  /healthz               - Liveness check
//   GET  /version               - Application and UBL version
//   POST /v1/invoices           - Build and return the UBL document
//                                 ?format=json|xml  (default: output_format)
//                                 ?indent=true      (pretty-print)
//   POST /v1/invoices/validate  - Build only; returns an invoice summary
//
// Posted documents must carry their lines inline; lines_file is refused.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/converter"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	"json": "application/json; charset=utf-8",
	"xml":  "application/xml; charset=utf-8",
}

// =============================================================================
// SERVER STRUCTURE
// =============================================================================

// Server serves invoice builds over HTTP.
type Server struct {
	mainConfig *config.MainConfig
	builder    *invoice.Builder
	logger     *zap.Logger
	version    string
	engine     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithBuilder sets the invoice builder, and with it the scalar validator.
func WithBuilder(b *invoice.Builder) Option {
	return func(s *Server) {
		s.builder = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the version reported by GET /version.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a Server and registers its routes.
func New(mainConfig *config.MainConfig, opts ...Option) *Server {
	s := &Server{
		mainConfig: mainConfig,
		logger:     zap.NewNop(),
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = invoice.NewBuilder(nil)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))

	engine.GET("/healthz", s.health)
	engine.GET("/version", s.versionInfo)

	invoices := engine.Group("/v1/invoices", BodyLimit(mainConfig.MaxBodyBytes))
	invoices.POST("", s.buildInvoice)
	invoices.POST("/validate", s.validateInvoice)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.mainConfig.ServeAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) health(c *gin.Context) {
	success(c, gin.H{"status": "ok"})
}

func (s *Server) versionInfo(c *gin.Context) {
	success(c, gin.H{
		"name":        "UBL Invoice Builder",
		"version":     s.version,
		"ubl_version": "2.1",
		"go_version":  runtime.Version(),
	})
}

// buildInvoice builds the posted document and returns the UBL document.
func (s *Server) buildInvoice(c *gin.Context) {
	format := c.DefaultQuery("format", s.mainConfig.OutputFormat)
	contentType, ok := contentTypes[format]
	if !ok {
		abortWithError(c, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("unknown format %q, expected json or xml", format))
		return
	}

	indent := s.mainConfig.Indent
	if raw, ok := c.GetQuery("indent"); ok {
		pretty, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, "indent must be true or false")
			return
		}
		indent = ""
		if pretty {
			indent = "  "
		}
	}

	inv, ok := s.build(c)
	if !ok {
		return
	}

	document, _, err := converter.Serialize(inv, format, indent)
	if err != nil {
		abortWithBuildError(c, err)
		return
	}

	requestLogger(c).Debug("invoice built",
		zap.String("invoice_id", inv.ID().String()),
		zap.Int("lines", len(inv.Lines())),
		zap.String("format", format))

	c.Header("X-Invoice-ID", inv.ID().String())
	c.Data(http.StatusOK, contentType, document)
}

// validateInvoice builds the posted document and returns a summary.
func (s *Server) validateInvoice(c *gin.Context) {
	inv, ok := s.build(c)
	if !ok {
		return
	}

	total := inv.LegalMonetaryTotal().PayableAmount()
	success(c, InvoiceSummary{
		InvoiceID:     inv.ID().String(),
		Lines:         len(inv.Lines()),
		PayableAmount: total.Format(),
		Currency:      total.CurrencyCode(),
	})
}

// build reads the posted document and builds its invoice. On failure the
// response has been written and ok is false.
func (s *Server) build(c *gin.Context) (inv *invoice.Invoice, ok bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if isTooLarge(err) {
			abortWithError(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				"request body exceeds maximum allowed size")
			return nil, false
		}
		abortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, "failed to read request body")
		return nil, false
	}

	doc, err := config.ParseInvoiceDocument(body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeInvalidDocument, err.Error())
		return nil, false
	}

	if doc.LinesFile != "" {
		abortWithError(c, http.StatusBadRequest, ErrCodeLinesFile,
			"lines_file is not accepted over HTTP; send lines inline")
		return nil, false
	}

	inv, _, err = converter.BuildInvoice(doc, s.builder)
	if err != nil {
		abortWithBuildError(c, err)
		return nil, false
	}

	return inv, true
}
