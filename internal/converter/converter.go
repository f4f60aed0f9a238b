// =============================================================================
// UBL Invoice Builder - Converter Module
// =============================================================================
//
// This module runs the build pipeline for a single invoice document, from
// YAML input to the UBL JSON (or UBL XML) output file.
//
// BUILD PIPELINE:
//   1. Load the invoice document
//   2. Read the line sheet, if any, and apply transformation rules
//   3. Build and finalize the invoice
//   4. Serialize the invoice in the configured output format
//   5. Write the output file
//   6. Archive the processed files
//
// CONCURRENCY:
//   The build command runs one Converter per document, each in its own
//   goroutine. A Converter shares nothing mutable with the others; the
//   invoice it builds never leaves its goroutine.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/jsonwriter"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/xmlwriter"
	"github.com/ginjaninja78/UBL-invoice-builder/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of building a single invoice document.
type Result struct {
	// FilePath is the path to the invoice document.
	FilePath string

	// OutputFile is the path to the generated JSON file.
	// Empty on failure and on dry runs.
	OutputFile string

	// ArchivePath is where the invoice document was archived, if it was.
	ArchivePath string

	// InvoiceID is the invoice identifier, once the invoice has been built.
	InvoiceID string

	// Document is the serialized UBL document.
	Document []byte

	// Success indicates whether the build succeeded.
	Success bool

	// Error contains the error if the build failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the build.
type ProcessingStats struct {
	BuildStats

	// PayableAmount is the rendered total with its currency, e.g. "100.00 CAD".
	PayableAmount string

	// ProcessingTime is the time taken to build the document.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter builds a single invoice document.
type Converter struct {
	docPath    string
	mainConfig *config.MainConfig
	files      *utils.FileManager
	builder    *invoice.Builder
	logger     *zap.Logger
	dryRun     bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithDryRun builds and serializes without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) {
		c.dryRun = dryRun
	}
}

// WithBuilder sets the invoice builder, and with it the scalar validator.
func WithBuilder(b *invoice.Builder) Option {
	return func(c *Converter) {
		c.builder = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - docPath: The path to the invoice document.
//   - mainConfig: The main application configuration.
//   - files: The file manager used for output and archival.
//   - opts: Optional settings.
func New(docPath string, mainConfig *config.MainConfig, files *utils.FileManager, opts ...Option) *Converter {
	c := &Converter{
		docPath:    docPath,
		mainConfig: mainConfig,
		files:      files,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.builder == nil {
		c.builder = invoice.NewBuilder(nil)
	}
	c.logger = c.logger.With(zap.String("file", filepath.Base(docPath)))
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the build pipeline for the document.
//
// Cancelling ctx stops the pipeline before the output file is written; a
// document is either written completely or not at all.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.docPath}

	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)

		entry := Describe(filepath.Base(c.docPath), err)
		if IsValidationError(err) {
			c.logger.Warn("invoice rejected", append(logFields(entry), zap.Error(err))...)
		} else {
			c.logger.Error("invoice build failed", zap.Error(err))
		}
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 1: LOAD INVOICE DOCUMENT
	// =========================================================================

	c.logger.Info("building invoice")

	doc, err := config.LoadInvoiceDocument(c.docPath)
	if err != nil {
		return fail(err)
	}

	c.logger.Debug("loaded invoice document",
		zap.String("invoice_id", doc.ID),
		zap.Int("inline_lines", len(doc.Lines)),
		zap.String("lines_file", doc.LinesFile))

	// =========================================================================
	// STEP 2-3: READ LINES, BUILD AND FINALIZE
	// =========================================================================

	inv, stats, err := BuildInvoice(doc, c.builder)
	result.Stats.BuildStats = stats
	if err != nil {
		return fail(err)
	}

	total := inv.LegalMonetaryTotal().PayableAmount()
	result.InvoiceID = inv.ID().String()
	result.Stats.PayableAmount = total.Format() + " " + total.CurrencyCode()

	c.logger.Debug("invoice finalized",
		zap.String("invoice_id", result.InvoiceID),
		zap.Int("lines", stats.LinesBuilt),
		zap.Int("rows_read", stats.RowsRead),
		zap.String("payable", result.Stats.PayableAmount))

	// =========================================================================
	// STEP 4: SERIALIZE
	// =========================================================================

	document, ext, err := Serialize(inv, c.mainConfig.OutputFormat, c.mainConfig.Indent)
	if err != nil {
		return fail(err)
	}
	result.Document = document

	if c.dryRun {
		c.logger.Info("dry run, output not written", zap.String("invoice_id", result.InvoiceID))
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILE
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	name := c.files.GenerateOutputFileName(c.mainConfig.OutputNameFormat, ext, map[string]string{
		"invoice_id": result.InvoiceID,
		"source":     strings.TrimSuffix(filepath.Base(c.docPath), filepath.Ext(c.docPath)),
	})

	outputPath, err := c.files.WriteOutputFile(name, document)
	if err != nil {
		return fail(err)
	}

	result.OutputFile = outputPath
	c.logger.Info("wrote invoice",
		zap.String("invoice_id", result.InvoiceID),
		zap.String("output", outputPath))

	// =========================================================================
	// STEP 6: ARCHIVE FILES
	// =========================================================================
	// Archival failures are logged but do not fail the build; the output
	// document is already complete.

	c.archiveFiles(&result)

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// Serialize renders a finalized invoice in an output format.
//
// PARAMETERS:
//   - inv: The finalized invoice.
//   - format: "json" or "xml". Empty selects "json".
//   - indent: Indentation string; empty writes compact output.
//
// RETURNS:
//   - The document.
//   - The file extension for the format.
//   - A *jsonwriter.SerializationError if the invoice is not finalized, or
//     an error naming an unknown format.
func Serialize(inv *invoice.Invoice, format, indent string) ([]byte, string, error) {
	switch format {
	case "xml":
		document, err := xmlwriter.GenerateWithOptions(inv, xmlwriter.GenerateOptions{
			Indent:                indent,
			IncludeXMLDeclaration: true,
		})
		return document, ".xml", err
	case "json", "":
		document, err := jsonwriter.GenerateWithOptions(inv, jsonwriter.GenerateOptions{
			Indent: indent,
		})
		return document, ".json", err
	default:
		return nil, "", fmt.Errorf("unknown output format %q", format)
	}
}

// archiveFiles moves the invoice document and copies the output document to
// their archive directories.
func (c *Converter) archiveFiles(result *Result) {
	if !c.files.ArchiveOnSuccess {
		return
	}

	archived, err := c.files.ArchiveInputFile(c.docPath)
	if err != nil {
		c.logger.Warn("failed to archive invoice document", zap.Error(err))
	} else {
		result.ArchivePath = archived
		c.logger.Debug("archived invoice document", zap.String("archive", archived))
	}

	if _, err := c.files.ArchiveOutputFile(result.OutputFile); err != nil {
		c.logger.Warn("failed to archive output document", zap.Error(err))
	}
}
