package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()

	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) }
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestFileManager_DiscoverInvoiceDocuments(t *testing.T) {
	fm := newTestManager(t)

	for _, name := range []string{"b.yml", "a.yaml", "notes.txt", "lines.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(fm.InputDir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.yaml"), 0755))

	files, err := fm.DiscoverInvoiceDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.yaml"),
		filepath.Join(fm.InputDir, "b.yml"),
	}, files)
}

func TestFileManager_WriteOutputFile(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteOutputFile("123.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.OutputDir, "123.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	entries, err := os.ReadDir(fm.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	t.Run("existing file is not replaced", func(t *testing.T) {
		_, err := fm.WriteOutputFile("123.json", []byte(`{"a":2}`))
		assert.ErrorIs(t, err, ErrOutputExists)
		assert.ErrorContains(t, err, path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))

		entries, err := os.ReadDir(fm.OutputDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestFileManager_Archive(t *testing.T) {
	t.Run("input is moved", func(t *testing.T) {
		fm := newTestManager(t)
		src := filepath.Join(fm.InputDir, "inv.yaml")
		require.NoError(t, os.WriteFile(src, []byte("id: 1"), 0644))

		archived, err := fm.ArchiveInputFile(src)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(fm.InputArchiveDir, "inv.yaml"), archived)
		assert.NoFileExists(t, src)
		assert.FileExists(t, archived)
	})

	t.Run("output is copied into dated subdirectory", func(t *testing.T) {
		fm := newTestManager(t)
		fm.UseTimestampSubdirs = true
		src, err := fm.WriteOutputFile("123.json", []byte("{}"))
		require.NoError(t, err)

		archived, err := fm.ArchiveOutputFile(src)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(fm.OutputArchiveDir, "2024", "01", "15", "123.json"), archived)
		assert.FileExists(t, src)
		assert.FileExists(t, archived)
	})

	t.Run("disabled", func(t *testing.T) {
		fm := newTestManager(t)
		fm.ArchiveOnSuccess = false
		src := filepath.Join(fm.InputDir, "inv.yaml")
		require.NoError(t, os.WriteFile(src, []byte("id: 1"), 0644))

		archived, err := fm.ArchiveInputFile(src)
		require.NoError(t, err)
		assert.Equal(t, src, archived)
		assert.FileExists(t, src)
	})
}

func TestFileManager_GenerateOutputFileName(t *testing.T) {
	fm := newTestManager(t)

	tests := []struct {
		name   string
		format string
		ext    string
		params map[string]string
		want   string
	}{
		{"invoice id", "{invoice_id}.json", ".json", map[string]string{"invoice_id": "123"}, "123.json"},
		{"unsafe id", "{invoice_id}.json", ".json", map[string]string{"invoice_id": "2024/01:A"}, "2024_01_A.json"},
		{"date and source", "{source}_{date}", ".json", map[string]string{"source": "inv"}, "inv_20240115.json"},
		{"timestamp", "{timestamp}.JSON", ".json", nil, "20240115_143022.JSON"},
		{"xml replaces json", "{invoice_id}.json", ".xml", map[string]string{"invoice_id": "123"}, "123.xml"},
		{"xml appended", "{invoice_id}", ".xml", map[string]string{"invoice_id": "123"}, "123.xml"},
		{"dots in id kept", "{invoice_id}", ".json", map[string]string{"invoice_id": "1.2"}, "1.2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.GenerateOutputFileName(tt.format, tt.ext, tt.params))
		})
	}

	t.Run("uuid", func(t *testing.T) {
		name := fm.GenerateOutputFileName("{uuid}.json", ".json", nil)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.json$`), name)
	})
}

func TestFileManager_Logs(t *testing.T) {
	fm := newTestManager(t)

	t.Run("no error entries writes nothing", func(t *testing.T) {
		path, err := fm.WriteErrorLog(nil)
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("error log", func(t *testing.T) {
		path, err := fm.WriteErrorLog([]ErrorLogEntry{{
			Timestamp:    fm.now(),
			FileName:     "inv.yaml",
			ErrorType:    "ScalarValidationError",
			ErrorMessage: "Item/Description: value is required",
			Component:    "InvoiceLine 2",
			FieldName:    "Item/Description",
			Rule:         "required",
			RowNumber:    3,
		}})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(fm.OutputDir, "error_log_20240115_143022.txt"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Total Errors: 1")
		assert.Contains(t, string(data), "Component:  InvoiceLine 2")
		assert.Contains(t, string(data), "Row Number: 3")
	})

	t.Run("summary log", func(t *testing.T) {
		start := fm.now()
		path, err := fm.WriteSummaryLog(ProcessingSummary{
			StartTime:       start,
			EndTime:         start.Add(2 * time.Second),
			TotalFiles:      2,
			SuccessfulFiles: 1,
			FailedFiles:     1,
			TotalLines:      1,
			ProcessedFiles: []ProcessedFileInfo{{
				InputFile: "a.yaml", OutputFile: "123.json", InvoiceID: "123", Lines: 1, PayableAmount: "100.00 CAD",
			}},
			FailedFilesList: []FailedFileInfo{{InputFile: "b.yaml", ErrorType: "FieldError", ErrorMessage: "bad"}},
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Duration:    2s")
		assert.Contains(t, string(data), "Payable:      100.00 CAD")
		assert.Contains(t, string(data), "File:  b.yaml")
	})
}
