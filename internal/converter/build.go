// =============================================================================
// UBL Invoice Builder - Document Assembly
// =============================================================================
//
// BuildInvoice turns a parsed invoice document into a finalized invoice. It
// only converts text to typed values (dates, decimals) and feeds the invoice
// builder; every schema rule is enforced by the builder itself.
//
// LINE ORDER:
//   1. Inline lines, in document order
//   2. Rows of lines_file, in sheet order, after transformation rules
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/csvparser"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/xlsxparser"
)

// BuildStats describes what went into an invoice.
type BuildStats struct {
	// RowsRead is the number of data rows read from lines_file.
	RowsRead int

	// LinesBuilt is the number of invoice lines.
	LinesBuilt int
}

// BuildInvoice builds and finalizes the invoice a document describes.
//
// PARAMETERS:
//   - doc: The invoice document.
//   - builder: The invoice builder. Nil selects the default schema validator.
//
// RETURNS:
//   - The finalized invoice.
//   - Build statistics, filled in as far as the build got.
//   - The first error encountered. Nothing is returned on error.
func BuildInvoice(doc *config.InvoiceDocument, builder *invoice.Builder) (*invoice.Invoice, BuildStats, error) {
	var stats BuildStats

	if builder == nil {
		builder = invoice.NewBuilder(nil)
	}

	// =========================================================================
	// STEP 1: HEADER
	// =========================================================================

	issueDate, err := validation.ParseDate(validation.RoleIssueDate, doc.IssueDate)
	if err != nil {
		return nil, stats, &invoice.FieldError{Component: "Invoice", Field: "IssueDate", Err: err}
	}

	periodStart, err := validation.ParseDate(validation.RolePeriodStartDate, doc.Period.Start)
	if err != nil {
		return nil, stats, &invoice.FieldError{Component: "InvoicePeriod", Field: "StartDate", Err: err}
	}

	periodEnd, err := validation.ParseDate(validation.RolePeriodEndDate, doc.Period.End)
	if err != nil {
		return nil, stats, &invoice.FieldError{Component: "InvoicePeriod", Field: "EndDate", Err: err}
	}

	inv, err := builder.NewInvoice(doc.ID, issueDate, periodStart, periodEnd)
	if err != nil {
		return nil, stats, err
	}

	// =========================================================================
	// STEP 2: PARTIES
	// =========================================================================

	supplier, err := builder.Supplier(doc.Supplier.Name)
	if err != nil {
		return nil, stats, err
	}
	if err := inv.SetSupplier(supplier); err != nil {
		return nil, stats, err
	}

	customer, err := builder.Customer(doc.Customer.Name)
	if err != nil {
		return nil, stats, err
	}
	if err := inv.SetCustomer(customer); err != nil {
		return nil, stats, err
	}

	// =========================================================================
	// STEP 3: LINES
	// =========================================================================

	lines, err := builder.Lines(doc.Currency)
	if err != nil {
		return nil, stats, err
	}

	for _, line := range doc.Lines {
		if err := addLine(lines, line.Description, line.Amount); err != nil {
			return nil, stats, err
		}
	}

	if doc.LinesFile != "" {
		rows, err := addSheetLines(lines, doc)
		stats.RowsRead = rows
		if err != nil {
			return nil, stats, err
		}
	}

	stats.LinesBuilt = lines.Len()

	if err := inv.SetLines(lines); err != nil {
		return nil, stats, err
	}

	// =========================================================================
	// STEP 4: FINALIZE
	// =========================================================================

	if err := inv.Finalize(); err != nil {
		return nil, stats, err
	}

	return inv, stats, nil
}

// addLine parses an amount and appends a line.
func addLine(lines *invoice.Lines, description, rawAmount string) error {
	amount, err := validation.ParseAmount(validation.RoleLineExtensionAmount, rawAmount)
	if err != nil {
		return &invoice.FieldError{
			Component: fmt.Sprintf("InvoiceLine %d", lines.Len()+1),
			Field:     "LineExtensionAmount",
			Err:       err,
		}
	}
	return lines.Add(description, amount)
}

// addSheetLines reads lines_file and appends one line per data row.
//
// RETURNS:
//   - The number of data rows read.
//   - A *RowError naming the source row of the first failure.
func addSheetLines(lines *invoice.Lines, doc *config.InvoiceDocument) (int, error) {
	data, err := readSheet(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to read lines_file: %w", err)
	}

	source := doc.LineSource
	for _, column := range []string{source.DescriptionColumn, source.AmountColumn} {
		if !hasHeader(data.Headers, column) {
			return data.RowCount, fmt.Errorf("lines_file %s has no %q column (found %s)",
				filepath.Base(doc.LinesFile), column, strings.Join(data.Headers, ", "))
		}
	}

	transformer, err := NewTransformer(doc.TransformationRules)
	if err != nil {
		return data.RowCount, fmt.Errorf("invalid transformation rules: %w", err)
	}

	for i, raw := range data.Rows {
		row := transformer.TransformRow(raw)
		if err := addLine(lines, row[source.DescriptionColumn], row[source.AmountColumn]); err != nil {
			return data.RowCount, &RowError{File: doc.LinesFile, Row: data.RowNumbers[i], Err: err}
		}
	}

	return data.RowCount, nil
}

// readSheet parses lines_file according to its extension.
func readSheet(doc *config.InvoiceDocument) (*csvparser.CSVData, error) {
	switch strings.ToLower(filepath.Ext(doc.LinesFile)) {
	case ".xlsx", ".xlsm":
		sheet, err := xlsxparser.Parse(doc.LinesFile, doc.LineSource)
		if err != nil {
			return nil, err
		}
		return sheet.CSVData, nil
	default:
		return csvparser.Parse(doc.LinesFile, doc.LineSource.CSVSettings)
	}
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
