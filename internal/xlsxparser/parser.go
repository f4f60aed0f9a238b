// =============================================================================
// UBL Invoice Builder - XLSX Parser Module
// =============================================================================
//
// This module reads invoice lines kept in an Excel workbook. Header and data
// rows follow the same settings as CSV sheets, so a workbook exported to CSV
// reads the same way.
//
// SHEET SELECTION:
//   The sheet named by LineSource.Sheet is read; when it is empty, the first
//   sheet in the workbook is used.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/csvparser"
	"github.com/xuri/excelize/v2"
)

// SheetData is a parsed worksheet.
type SheetData struct {
	*csvparser.CSVData

	// SheetName is the worksheet the rows were read from.
	SheetName string
}

// Parse reads line rows from a worksheet.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - source: The line source settings from the invoice document.
//
// RETURNS:
//   - A pointer to the SheetData struct.
//   - An error if the workbook or sheet cannot be read.
func Parse(filePath string, source config.LineSource) (*SheetData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, source)
}

// parseSheet reads the configured sheet of an open workbook.
func parseSheet(f *excelize.File, source config.LineSource) (*SheetData, error) {
	sheetName := source.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if index, err := f.GetSheetIndex(sheetName); err != nil || index < 0 {
		return nil, fmt.Errorf("workbook has no sheet %q", sheetName)
	}

	// GetRows returns formatted cell text, so amounts keep the scale the
	// sheet displays rather than a float rendering.
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	data, err := csvparser.Tabulate(rows, source.CSVSettings)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	data.SourceFile = f.Path

	return &SheetData{CSVData: data, SheetName: sheetName}, nil
}
