// =============================================================================
// UBL Invoice Builder - Build Command
// =============================================================================
//
// This file defines the 'build' command, which turns invoice documents into
// UBL JSON or UBL XML files (output_format).
//
// COMMAND USAGE:
//   ublinvoice build [flags]
//
// FLAGS:
//   --dry-run : Build and serialize without writing or archiving anything
//   --file    : Build a single invoice document instead of scanning input_dir
//   --stdout  : Print each generated document to standard output
//
// PROCESSING PIPELINE:
//   1. Discover invoice documents in the input directory
//   2. For each document (concurrently, at most max_concurrency at a time):
//      a. Load the document and read its line sheet
//      b. Build and finalize the invoice
//      c. Serialize it to UBL JSON or UBL XML
//      d. Write the output file and archive the document
//   3. Write the error log and the build summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/converter"
	"github.com/ginjaninja78/UBL-invoice-builder/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// buildOptions holds the build command flags.
type buildOptions struct {
	dryRun bool
	file   string
	stdout bool
}

var buildOpts buildOptions

// =============================================================================
// BUILD COMMAND DEFINITION
// =============================================================================

// buildCmd represents the 'build' command.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build UBL invoices from invoice documents",
	Long: `The build command scans the input directory for invoice documents (*.yaml,
*.yml), builds a UBL 2.1 invoice from each one and writes it as UBL JSON, or
as UBL XML when output_format is xml.

Documents are built concurrently. Each document is built independently, and
with continue_on_error a failure in one does not stop the others.

On success:
  - The UBL document is placed in the output directory
  - The invoice document is moved to the input archive
  - A copy of the UBL document is placed in the output archive

On error:
  - Nothing is written for that document
  - The failure is recorded in the error log with the offending field
  - The invoice document remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := runBuild(ctx, mainConfig, log, buildOpts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if summary.FailedFiles > 0 {
			return fmt.Errorf("%d of %d invoice document(s) failed", summary.FailedFiles, summary.TotalFiles)
		}
		return nil
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(
		&buildOpts.dryRun,
		"dry-run",
		false,
		"Build and serialize without writing or archiving anything",
	)

	buildCmd.Flags().StringVar(
		&buildOpts.file,
		"file",
		"",
		"Path to a single invoice document to build",
	)

	buildCmd.Flags().BoolVar(
		&buildOpts.stdout,
		"stdout",
		false,
		"Print each generated document to standard output",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runBuild builds every selected invoice document.
//
// PARAMETERS:
//   - ctx: Cancelling ctx stops documents that have not been written yet.
//   - mainConfig: The main application configuration.
//   - log: The logger.
//   - opts: The command flags.
//   - out: Where --stdout documents and the run report are printed.
//
// RETURNS:
//   - The build summary.
//   - An error if the run itself could not start or its logs could not be
//     written. Failed documents are reported in the summary, not here.
func runBuild(ctx context.Context, mainConfig *config.MainConfig, log *zap.Logger, opts buildOptions, out io.Writer) (*utils.ProcessingSummary, error) {
	summary := &utils.ProcessingSummary{StartTime: time.Now()}

	files := newFileManager(mainConfig)
	if !opts.dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return nil, err
		}
	}

	// =========================================================================
	// STEP 1: DISCOVER INVOICE DOCUMENTS
	// =========================================================================

	docs, err := selectDocuments(files, opts.file)
	if err != nil {
		return nil, err
	}

	summary.TotalFiles = len(docs)
	if len(docs) == 0 {
		log.Info("no invoice documents found", zap.String("input_dir", mainConfig.InputDir))
		summary.EndTime = time.Now()
		return summary, nil
	}

	log.Info("building invoices",
		zap.Int("documents", len(docs)),
		zap.Bool("dry_run", opts.dryRun))

	// =========================================================================
	// STEP 2: BUILD DOCUMENTS CONCURRENTLY
	// =========================================================================

	results := buildAll(ctx, docs, mainConfig, files, log, opts.dryRun)

	// =========================================================================
	// STEP 3: COLLECT RESULTS
	// =========================================================================

	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalLines += result.Stats.LinesBuilt
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:     name,
				OutputFile:    result.OutputFile,
				ArchivePath:   result.ArchivePath,
				InvoiceID:     result.InvoiceID,
				Lines:         result.Stats.LinesBuilt,
				PayableAmount: result.Stats.PayableAmount,
				ProcessTime:   result.Stats.ProcessingTime,
			})

			if opts.stdout {
				fmt.Fprintf(out, "%s\n", result.Document)
			}
			continue
		}

		entry := converter.Describe(name, result.Error)
		errorEntries = append(errorEntries, entry)

		summary.FailedFiles++
		if converter.IsValidationError(result.Error) {
			summary.ValidationErrors++
		}
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    name,
			ErrorMessage: entry.ErrorMessage,
			ErrorType:    entry.ErrorType,
		})
	}

	summary.EndTime = time.Now()

	log.Info("build complete",
		zap.Int("total", summary.TotalFiles),
		zap.Int("succeeded", summary.SuccessfulFiles),
		zap.Int("failed", summary.FailedFiles),
		zap.Duration("elapsed", summary.EndTime.Sub(summary.StartTime)))

	// =========================================================================
	// STEP 4: WRITE LOGS
	// =========================================================================

	if opts.dryRun {
		return summary, nil
	}

	errorLog, err := files.WriteErrorLog(errorEntries)
	if err != nil {
		return summary, err
	}
	if errorLog != "" {
		log.Info("errors have been logged", zap.String("error_log", errorLog))
	}

	summaryLog, err := files.WriteSummaryLog(*summary)
	if err != nil {
		return summary, err
	}
	log.Debug("summary written", zap.String("summary_log", summaryLog))

	return summary, nil
}

// buildAll runs one converter per document, at most max_concurrency at a
// time, and returns the results in document order.
//
// Without continue_on_error the first failure cancels every document that has
// not been written yet.
func buildAll(ctx context.Context, docs []string, mainConfig *config.MainConfig, files *utils.FileManager, log *zap.Logger, dryRun bool) []converter.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		index  int
		result converter.Result
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, mainConfig.MaxConcurrency)
	resultCh := make(chan indexed, len(docs))

	for i, doc := range docs {
		wg.Add(1)

		go func(i int, doc string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultCh <- indexed{i, converter.Result{FilePath: doc, Error: ctx.Err()}}
				return
			}

			conv := converter.New(doc, mainConfig, files,
				converter.WithDryRun(dryRun),
				converter.WithLogger(log))
			result := conv.Run(ctx)

			if !result.Success && !mainConfig.ContinueOnError {
				cancel()
			}
			resultCh <- indexed{i, result}
		}(i, doc)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]converter.Result, len(docs))
	for r := range resultCh {
		results[r.index] = r.result
	}
	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newFileManager creates the file manager described by the main configuration.
func newFileManager(mainConfig *config.MainConfig) *utils.FileManager {
	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	return files
}

// selectDocuments returns the single --file document, or every invoice
// document in the input directory.
func selectDocuments(files *utils.FileManager, file string) ([]string, error) {
	if file == "" {
		docs, err := files.DiscoverInvoiceDocuments()
		if err != nil {
			return nil, fmt.Errorf("failed to discover invoice documents: %w", err)
		}
		return docs, nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", file)
	}
	return []string{file}, nil
}
