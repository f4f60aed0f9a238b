// =============================================================================
// UBL Invoice Builder - Invoice Document Module
// =============================================================================
//
// An invoice document is a YAML file describing one invoice:
//
//   id: "123"
//   issue_date: 2011-09-22
//   period:
//     start: 2011-08-01
//     end: 2011-08-31
//   currency: CAD
//   supplier:
//     name: CustomCotterPins
//   customer:
//     name: NorthAmericanVeeblefetzer
//   lines:
//     - description: "Cotterpin,MIL-SPEC"
//       amount: 100.00
//
// Lines may instead (or additionally) come from a CSV or XLSX sheet named by
// lines_file. Inline lines are added first, then the sheet rows in order.
//
// Scalars are kept as the raw text of the document. Amounts in particular
// are never routed through float64, so "100.10" stays exactly 100.10.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// INVOICE DOCUMENT STRUCTURE
// =============================================================================

// InvoiceDocument is the parsed input for one invoice.
type InvoiceDocument struct {
	// ID is the invoice identifier.
	ID string `yaml:"id"`

	// IssueDate is the issue date in YYYY-MM-DD form.
	IssueDate string `yaml:"issue_date"`

	// Period is the billing period.
	Period PeriodSettings `yaml:"period"`

	// Currency is the ISO 4217 code shared by every line and the total.
	Currency string `yaml:"currency"`

	// Supplier is the selling party.
	Supplier PartySettings `yaml:"supplier"`

	// Customer is the buying party.
	Customer PartySettings `yaml:"customer"`

	// Lines are the inline invoice lines.
	Lines []LineSettings `yaml:"lines"`

	// LinesFile is a CSV or XLSX file holding more lines. A relative path is
	// resolved against the directory of the invoice document.
	LinesFile string `yaml:"lines_file,omitempty"`

	// LineSource describes how rows of LinesFile map to lines.
	LineSource LineSource `yaml:"line_source,omitempty"`

	// TransformationRules are applied to sheet rows before they become lines.
	TransformationRules []TransformationRule `yaml:"transformation_rules,omitempty"`

	// SourceFile is the path the document was loaded from.
	SourceFile string `yaml:"-"`
}

// PeriodSettings holds the invoice period dates.
type PeriodSettings struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// PartySettings holds a party's details.
type PartySettings struct {
	Name string `yaml:"name"`
}

// LineSettings is one inline invoice line.
type LineSettings struct {
	Description string `yaml:"description"`

	// Amount is the decimal amount as written in the document.
	Amount string `yaml:"amount"`
}

// =============================================================================
// LINE SOURCE STRUCTURE
// =============================================================================

// LineSource describes a tabular line source.
type LineSource struct {
	// DescriptionColumn is the header of the item description column.
	// Default: "Description"
	DescriptionColumn string `yaml:"description_column"`

	// AmountColumn is the header of the line amount column.
	// Default: "Amount"
	AmountColumn string `yaml:"amount_column"`

	// Sheet is the XLSX sheet to read. Ignored for CSV.
	// Default: the first sheet
	Sheet string `yaml:"sheet,omitempty"`

	// CSVSettings also governs header and data rows for XLSX sheets.
	CSVSettings `yaml:",inline"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing tabular line files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows. Multi-row headers are merged
	// column by column with a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is the character encoding of the CSV file.
	// Supported values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a specific column.
type TransformationRule struct {
	// Field is the column header the rule applies to.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string" : Add a string to the beginning of the value
	//   - "append_string"  : Add a string to the end of the value
	//   - "trim"           : Remove leading and trailing whitespace
	//   - "uppercase"      : Convert to uppercase
	//   - "lowercase"      : Convert to lowercase
	//   - "title_case"     : Capitalize each word
	//   - "replace"        : Replace Find with Value
	//   - "regex_replace"  : Replace the pattern Find with Value
	//   - "pad_left"       : Left pad to the length in Value with Pad
	//   - "lookup"         : Replace the value using LookupTable
	//   - "strip_currency" : Remove currency symbols and thousands separators
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value,omitempty"`

	// Find is the substring or pattern for replace and regex_replace.
	Find string `yaml:"find,omitempty"`

	// Pad is the padding character for pad_left.
	// Default: "0"
	Pad string `yaml:"pad,omitempty"`

	// LookupTable maps input values to output values.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// DOCUMENT LOADING FUNCTIONS
// =============================================================================

// LoadInvoiceDocument loads an invoice document from a YAML file.
//
// PARAMETERS:
//   - filePath: The path to the invoice document.
//
// RETURNS:
//   - The document with defaults applied and LinesFile resolved.
//   - An error if the file cannot be read or parsed, or names no lines.
func LoadInvoiceDocument(filePath string) (*InvoiceDocument, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice document: %w", err)
	}

	doc, err := ParseInvoiceDocument(data)
	if err != nil {
		return nil, err
	}

	doc.SourceFile = filePath
	if doc.LinesFile != "" && !filepath.IsAbs(doc.LinesFile) {
		doc.LinesFile = filepath.Join(filepath.Dir(filePath), doc.LinesFile)
	}

	return doc, nil
}

// ParseInvoiceDocument parses an invoice document from YAML bytes.
func ParseInvoiceDocument(data []byte) (*InvoiceDocument, error) {
	var doc InvoiceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse invoice document: %w", err)
	}

	applyDocumentDefaults(&doc)

	if err := validateDocument(&doc); err != nil {
		return nil, fmt.Errorf("invalid invoice document: %w", err)
	}

	return &doc, nil
}

// applyDocumentDefaults sets default values for the line source.
func applyDocumentDefaults(doc *InvoiceDocument) {
	ApplyCSVDefaults(&doc.LineSource.CSVSettings)

	if doc.LineSource.DescriptionColumn == "" {
		doc.LineSource.DescriptionColumn = "Description"
	}
	if doc.LineSource.AmountColumn == "" {
		doc.LineSource.AmountColumn = "Amount"
	}
	for i := range doc.TransformationRules {
		for j := range doc.TransformationRules[i].Actions {
			action := &doc.TransformationRules[i].Actions[j]
			if action.Type == "pad_left" && action.Pad == "" {
				action.Pad = "0"
			}
		}
	}
}

// ApplyCSVDefaults sets default values for tabular parsing settings.
func ApplyCSVDefaults(settings *CSVSettings) {
	if settings.Delimiter == "" {
		settings.Delimiter = ","
	}
	if settings.HeaderRows == 0 {
		settings.HeaderRows = 1
	}
	if settings.DataStartRow == 0 {
		settings.DataStartRow = settings.HeaderRows + 1
	}
	if settings.Encoding == "" {
		settings.Encoding = "UTF-8"
	}
}

// validateDocument checks the document's structure. Field contents are left
// to the invoice builder, which reports them with their schema role.
func validateDocument(doc *InvoiceDocument) error {
	if len(doc.Lines) == 0 && doc.LinesFile == "" {
		return fmt.Errorf("no lines and no lines_file")
	}

	if doc.LinesFile != "" {
		switch strings.ToLower(filepath.Ext(doc.LinesFile)) {
		case ".csv", ".txt", ".xlsx", ".xlsm":
		default:
			return fmt.Errorf("unsupported lines_file type %q", filepath.Ext(doc.LinesFile))
		}
	}

	if doc.LineSource.HeaderRows < 1 {
		return fmt.Errorf("header_rows must be at least 1")
	}
	if doc.LineSource.DataStartRow <= doc.LineSource.HeaderRows {
		return fmt.Errorf("data_start_row %d overlaps the %d header row(s)",
			doc.LineSource.DataStartRow, doc.LineSource.HeaderRows)
	}

	for i, rule := range doc.TransformationRules {
		if rule.Field == "" {
			return fmt.Errorf("transformation rule %d has no field", i+1)
		}
	}

	return nil
}
