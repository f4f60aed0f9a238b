package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "lines.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func source(sheet string) config.LineSource {
	s := config.LineSource{Sheet: sheet}
	config.ApplyCSVDefaults(&s.CSVSettings)
	return s
}

func TestParse(t *testing.T) {
	t.Run("first sheet by default", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]any{
			"Lines": {
				{"Description", "Amount"},
				{"Cotterpin,MIL-SPEC", "100.00"},
				{},
				{"Bolt", "0.10"},
			},
		})

		data, err := Parse(path, source(""))
		require.NoError(t, err)

		assert.Equal(t, "Lines", data.SheetName)
		assert.Equal(t, path, data.SourceFile)
		assert.Equal(t, []string{"Description", "Amount"}, data.Headers)
		require.Equal(t, 2, data.RowCount)
		assert.Equal(t, "Cotterpin,MIL-SPEC", data.Rows[0]["Description"])
		assert.Equal(t, "100.00", data.Rows[0]["Amount"])
		assert.Equal(t, "0.10", data.Rows[1]["Amount"])
		assert.Equal(t, []int{2, 4}, data.RowNumbers)
	})

	t.Run("named sheet", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]any{
			"Summary": {{"Total"}, {"1"}},
		})

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		_, err = f.NewSheet("Detail")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Detail", "A1", &[]any{"Description", "Amount"}))
		require.NoError(t, f.SetSheetRow("Detail", "A2", &[]any{"Washer", "0.05"}))
		require.NoError(t, f.Save())
		require.NoError(t, f.Close())

		data, err := Parse(path, source("Detail"))
		require.NoError(t, err)
		assert.Equal(t, "Detail", data.SheetName)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, "Washer", data.Rows[0]["Description"])
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]any{"Lines": {{"Description"}}})

		_, err := Parse(path, source("Nope"))
		assert.ErrorContains(t, err, `no sheet "Nope"`)
	})

	t.Run("empty sheet", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]any{"Lines": {}})

		_, err := Parse(path, source(""))
		assert.ErrorContains(t, err, "is empty")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "absent.xlsx"), source(""))
		assert.ErrorContains(t, err, "failed to open workbook")
	})
}
