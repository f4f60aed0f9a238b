package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func settings(mutate func(*config.CSVSettings)) config.CSVSettings {
	s := config.CSVSettings{}
	if mutate != nil {
		mutate(&s)
	}
	config.ApplyCSVDefaults(&s)
	return s
}

func TestParseReader(t *testing.T) {
	t.Run("single header row", func(t *testing.T) {
		input := "Description,Amount\n\"Cotterpin,MIL-SPEC\",100.00\n,\nWidget, 2.50\n"

		data, err := ParseReader(strings.NewReader(input), settings(nil))
		require.NoError(t, err)

		assert.Equal(t, []string{"Description", "Amount"}, data.Headers)
		require.Equal(t, 2, data.RowCount)
		assert.Equal(t, "Cotterpin,MIL-SPEC", data.Rows[0]["Description"])
		assert.Equal(t, "100.00", data.Rows[0]["Amount"])
		assert.Equal(t, "2.50", data.Rows[1]["Amount"])
		assert.Equal(t, []int{2, 4}, data.RowNumbers)
	})

	t.Run("multi-row headers and pipe delimiter", func(t *testing.T) {
		input := "Item||Line\nDescription|Qty|Amount\nBolt|3|1.20\n"

		data, err := ParseReader(strings.NewReader(input), settings(func(s *config.CSVSettings) {
			s.Delimiter = "pipe"
			s.HeaderRows = 2
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"Item Description", "Qty", "Line Amount"}, data.Headers)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, "1.20", data.Rows[0]["Line Amount"])
		assert.Equal(t, []int{3}, data.RowNumbers)
	})

	t.Run("data start row skips metadata", func(t *testing.T) {
		input := "Description,Amount\nexported 2011-09-22,\nBolt,1\n"

		data, err := ParseReader(strings.NewReader(input), settings(func(s *config.CSVSettings) {
			s.DataStartRow = 3
		}))
		require.NoError(t, err)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, "Bolt", data.Rows[0]["Description"])
	})

	t.Run("empty headers and short rows", func(t *testing.T) {
		data, err := ParseReader(strings.NewReader("\ufeffDescription,,Amount\nBolt\n"), settings(nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"Description", "Column_2", "Amount"}, data.Headers)
		assert.Equal(t, "", data.Rows[0]["Amount"])
	})

	t.Run("windows-1252 input", func(t *testing.T) {
		encoded, err := charmap.Windows1252.NewEncoder().String("Description,Amount\nCafé crème,4.00\n")
		require.NoError(t, err)

		data, err := ParseReader(bytes.NewReader([]byte(encoded)), settings(func(s *config.CSVSettings) {
			s.Encoding = "Windows-1252"
		}))
		require.NoError(t, err)
		assert.Equal(t, "Café crème", data.Rows[0]["Description"])
	})

	t.Run("errors", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader(""), settings(nil))
		assert.ErrorContains(t, err, "empty")

		_, err = ParseReader(strings.NewReader("a,b\n"), settings(func(s *config.CSVSettings) {
			s.Encoding = "EBCDIC"
		}))
		assert.ErrorContains(t, err, "unsupported encoding")

		_, err = ParseReader(strings.NewReader("a,b\n"), settings(func(s *config.CSVSettings) {
			s.HeaderRows = 3
		}))
		assert.ErrorContains(t, err, "fewer rows than header_rows")
	})
}

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.csv")
	require.NoError(t, os.WriteFile(path, []byte("Description\tAmount\nBolt\t1.00\n"), 0644))

	data, err := Parse(path, settings(func(s *config.CSVSettings) {
		s.Delimiter = "\\t"
	}))
	require.NoError(t, err)
	assert.Equal(t, path, data.SourceFile)
	assert.Equal(t, 2, data.ColumnCount)
	assert.Equal(t, "1.00", data.Rows[0]["Amount"])

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), settings(nil))
	assert.ErrorContains(t, err, "failed to open file")
}
