// =============================================================================
// UBL Invoice Builder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The build, validate,
// serve and version commands are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ublinvoice)
//   ├── buildCmd    (ublinvoice build)
//   ├── validateCmd (ublinvoice validate)
//   ├── serveCmd    (ublinvoice serve)
//   └── versionCmd  (ublinvoice version)
//
// CONFIGURATION:
//   Commands that touch invoice documents call setup, which:
//   1. Loads the main configuration (--config, UBLINVOICE_* overrides)
//   2. Builds the zap logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/config"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ublinvoice",
	Short: "UBL Invoice Builder - Build UBL 2.1 invoices as UBL JSON documents",
	Long: `UBL Invoice Builder assembles UBL 2.1 Invoice documents from YAML invoice
descriptions and writes them in the UBL JSON alternative representation
or as UBL XML.

Every value is validated against its schema role before it becomes part of
an invoice, and an invoice is only written once it is complete.

Key Features:
  - Inline invoice lines or lines read from CSV and XLSX sheets
  - Transformation rules for sheet columns
  - Exact decimal totals in the invoice currency
  - Concurrent builds with detailed error logs
  - HTTP API for building invoices on request
  - Automatic archival of built documents

Example Usage:
  ublinvoice build                         # Build every document in the input directory
  ublinvoice build --file invoice.yaml     # Build a single document
  ublinvoice build --dry-run --stdout      # Print documents without writing them
  ublinvoice validate                      # Check documents without writing output
  ublinvoice serve --addr :9000            # Serve the HTTP API`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// setup loads the main configuration and builds the logger. The default
// config file is optional; one named with --config must exist.
//
// RETURNS:
//   - The main configuration.
//   - The logger. The caller syncs it when done.
//   - An error if either cannot be created.
func setup() (*config.MainConfig, *zap.Logger, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile, rootCmd.PersistentFlags().Changed("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = mainConfig.LogLevel
	logCfg.Format = mainConfig.LogFormat
	logCfg.Output = mainConfig.LogFile
	if verbose {
		logCfg.Level = "debug"
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("input_dir", mainConfig.InputDir),
		zap.String("output_dir", mainConfig.OutputDir),
		zap.Int("max_concurrency", mainConfig.MaxConcurrency))

	return mainConfig, log, nil
}
