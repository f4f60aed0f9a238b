// =============================================================================
// UBL Invoice Builder - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It builds every invoice document
// exactly as 'build' does but writes nothing, and reports each failure with
// the field that caused it.
//
// COMMAND USAGE:
//   ublinvoice validate [--file invoice.yaml]
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/converter"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateFile is the single document to validate, if set.
var validateFile string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate invoice documents without writing output",
	Long: `The validate command builds every invoice document in the input directory
without writing or archiving anything. Each document is reported as valid or
with the component, field and rule that rejected it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		return runValidate(cmd.Context(), mainConfig, log, validateFile, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validateFile,
		"file",
		"",
		"Path to a single invoice document to validate",
	)
}

// runValidate builds the selected documents in dry-run mode and prints a
// report to out.
//
// RETURNS:
//   - An error if any document is invalid.
func runValidate(ctx context.Context, mainConfig *config.MainConfig, log *zap.Logger, file string, out io.Writer) error {
	files := newFileManager(mainConfig)

	docs, err := selectDocuments(files, file)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(out, "No invoice documents found in %s\n", mainConfig.InputDir)
		return nil
	}

	validateConfig := *mainConfig
	validateConfig.ContinueOnError = true

	results := buildAll(ctx, docs, &validateConfig, files, log, true)

	var failures []error
	for _, result := range results {
		name := filepath.Base(result.FilePath)

		if result.Success {
			fmt.Fprintf(out, "  ✓ %s: invoice %s, %d line(s), payable %s\n",
				name, result.InvoiceID, result.Stats.LinesBuilt, result.Stats.PayableAmount)
			continue
		}

		entry := converter.Describe(name, result.Error)
		fmt.Fprintf(out, "  ✗ %s: %s\n", name, describeField(entry.Component, entry.FieldName, entry.Rule))
		failures = append(failures, fmt.Errorf("%s: %w", name, result.Error))
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, validation.FormatErrors(failures))

	if len(failures) > 0 {
		return errors.New("validation failed")
	}
	return nil
}

// describeField renders the location of a failure, e.g.
// "InvoiceLine 2 Item/Description [required]".
func describeField(component, field, rule string) string {
	location := component
	if field != "" {
		if location != "" {
			location += " "
		}
		location += field
	}
	if location == "" {
		location = "document"
	}
	if rule != "" {
		location += " [" + rule + "]"
	}
	return location
}
