package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func invoiceYAML(id, description, amount string) string {
	return `id: "` + id + `"
issue_date: 2011-09-22
period: {start: 2011-08-01, end: 2011-08-31}
currency: CAD
supplier: {name: CustomCotterPins}
customer: {name: NorthAmericanVeeblefetzer}
lines:
  - description: "` + description + `"
    amount: ` + amount + `
`
}

func newTestConfig(t *testing.T, docs map[string]string) *config.MainConfig {
	t.Helper()

	root := t.TempDir()
	cfg := &config.MainConfig{
		InputDir:         filepath.Join(root, "input"),
		OutputDir:        filepath.Join(root, "output"),
		InputArchiveDir:  filepath.Join(root, "input_archive"),
		OutputArchiveDir: filepath.Join(root, "output_archive"),
		OutputNameFormat: "{invoice_id}.json",
		MaxConcurrency:   2,
		ContinueOnError:  true,
		ArchiveOnSuccess: true,
	}

	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, name), []byte(body), 0644))
	}
	return cfg
}

func outputNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunBuild(t *testing.T) {
	t.Run("builds every document and logs failures", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]string{
			"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
			"b.yml":  invoiceYAML("B-1", "Washer", "0.50"),
			"c.yaml": invoiceYAML("C-1", "", "1.00"),
			"notes":  "ignored",
		})

		summary, err := runBuild(context.Background(), cfg, zap.NewNop(), buildOptions{}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalFiles)
		assert.Equal(t, 2, summary.SuccessfulFiles)
		assert.Equal(t, 1, summary.FailedFiles)
		assert.Equal(t, 1, summary.ValidationErrors)
		assert.Equal(t, 2, summary.TotalLines)
		require.Len(t, summary.FailedFilesList, 1)
		assert.Equal(t, "c.yaml", summary.FailedFilesList[0].InputFile)
		assert.Equal(t, "ScalarValidationError", summary.FailedFilesList[0].ErrorType)

		names := outputNames(t, cfg.OutputDir)
		assert.Contains(t, names, "A-1.json")
		assert.Contains(t, names, "B-1.json")
		assert.NotContains(t, names, "C-1.json")

		var errorLog string
		for _, n := range names {
			if strings.HasPrefix(n, "error_log_") {
				errorLog = n
			}
		}
		require.NotEmpty(t, errorLog)
		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, errorLog))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Item/Description")

		assert.ElementsMatch(t, []string{"c.yaml", "notes"}, outputNames(t, cfg.InputDir))
		assert.ElementsMatch(t, []string{"a.yaml", "b.yml"}, outputNames(t, cfg.InputArchiveDir))
	})

	t.Run("shared invoice id fails the second document", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]string{
			"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
			"b.yaml": invoiceYAML("A-1", "Washer", "0.50"),
		})

		summary, err := runBuild(context.Background(), cfg, zap.NewNop(), buildOptions{}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, 1, summary.SuccessfulFiles)
		assert.Equal(t, 1, summary.FailedFiles)
		require.Len(t, summary.FailedFilesList, 1)
		assert.Contains(t, summary.FailedFilesList[0].ErrorMessage, "output file already exists")
		assert.Contains(t, outputNames(t, cfg.OutputDir), "A-1.json")
		assert.Len(t, outputNames(t, cfg.InputArchiveDir), 1)
		assert.Len(t, outputNames(t, cfg.InputDir), 1)
	})

	t.Run("dry run prints documents and writes nothing", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]string{
			"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
		})
		var out bytes.Buffer

		summary, err := runBuild(context.Background(), cfg, zap.NewNop(),
			buildOptions{dryRun: true, stdout: true}, &out)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.SuccessfulFiles)
		assert.Contains(t, out.String(), `"IdentifierContent":"A-1"`)
		assert.NoDirExists(t, cfg.OutputDir)
		assert.FileExists(t, filepath.Join(cfg.InputDir, "a.yaml"))
	})

	t.Run("single file", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]string{
			"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
			"b.yaml": invoiceYAML("B-1", "Washer", "0.50"),
		})

		summary, err := runBuild(context.Background(), cfg, zap.NewNop(),
			buildOptions{file: filepath.Join(cfg.InputDir, "b.yaml")}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, 1, summary.TotalFiles)
		assert.FileExists(t, filepath.Join(cfg.OutputDir, "B-1.json"))
		assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "A-1.json"))
	})

	t.Run("missing single file", func(t *testing.T) {
		cfg := newTestConfig(t, nil)

		_, err := runBuild(context.Background(), cfg, zap.NewNop(),
			buildOptions{file: filepath.Join(cfg.InputDir, "nope.yaml")}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("empty input directory", func(t *testing.T) {
		cfg := newTestConfig(t, nil)

		summary, err := runBuild(context.Background(), cfg, zap.NewNop(), buildOptions{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Zero(t, summary.TotalFiles)
	})

	t.Run("cancelled run writes nothing", func(t *testing.T) {
		cfg := newTestConfig(t, map[string]string{
			"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		summary, err := runBuild(ctx, cfg, zap.NewNop(), buildOptions{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.FailedFiles)
		assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "A-1.json"))
	})
}

func TestRunValidate(t *testing.T) {
	cfg := newTestConfig(t, map[string]string{
		"a.yaml": invoiceYAML("A-1", "Cotterpin", "100.00"),
		"b.yaml": invoiceYAML("B-1", "Washer", "ten"),
	})
	var out bytes.Buffer

	err := runValidate(context.Background(), cfg, zap.NewNop(), "", &out)
	assert.EqualError(t, err, "validation failed")

	report := out.String()
	assert.Contains(t, report, "✓ a.yaml: invoice A-1, 1 line(s), payable 100.00 CAD")
	assert.Contains(t, report, "✗ b.yaml: InvoiceLine 1 LineExtensionAmount [xsd:decimal]")
	assert.Contains(t, report, "Validation completed with 1 error(s)")
	assert.NoDirExists(t, cfg.OutputDir)
	assert.FileExists(t, filepath.Join(cfg.InputDir, "b.yaml"))
}

func TestDescribeField(t *testing.T) {
	assert.Equal(t, "InvoiceLine 2 Item/Description [required]", describeField("InvoiceLine 2", "Item/Description", "required"))
	assert.Equal(t, "Invoice [start<=end]", describeField("Invoice", "", "start<=end"))
	assert.Equal(t, "document", describeField("", "", ""))
}
