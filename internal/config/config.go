// =============================================================================
// UBL Invoice Builder - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration and
// the invoice documents the builder consumes.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Directories, logging and processing settings
//   2. Invoice Documents (input/*.yaml): One invoice per file
//
// PRIORITY (highest to lowest):
//   1. Environment variables with the UBLINVOICE_ prefix (UBLINVOICE_OUTPUT_DIR)
//   2. The main config file
//   3. Built-in defaults
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "UBLINVOICE"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for invoice documents.
	// Default: "./input"
	InputDir string

	// OutputDir is the directory where generated JSON documents are placed.
	// Default: "./output"
	OutputDir string

	// InputArchiveDir receives invoice documents after they are built.
	// Default: "./input_archive"
	InputArchiveDir string

	// OutputArchiveDir receives copies of the generated JSON documents.
	// Default: "./output_archive"
	OutputArchiveDir string

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string

	// LogFormat selects the zap encoder.
	// Valid values: "console", "json"
	// Default: "console"
	LogFormat string

	// LogFile is "stdout", "stderr" or a file path.
	// Default: "stderr"
	LogFile string

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {invoice_id} - The invoice identifier
	//   {uuid}       - A random UUID
	//   {timestamp}  - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}       - Current date (YYYYMMDD)
	//   {source}     - Input file name without extension
	//
	// Default: "{invoice_id}.json"
	OutputNameFormat string

	// OutputFormat selects the document syntax.
	// Valid values: "json" (UBL JSON), "xml" (UBL XML)
	// Default: "json"
	OutputFormat string

	// Indent pretty-prints the output when non-empty.
	// Default: "" (compact)
	Indent string

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of invoices built concurrently.
	// Default: 4
	MaxConcurrency int

	// ContinueOnError keeps processing other documents after a failure.
	// Default: true
	ContinueOnError bool

	// ArchiveOnSuccess moves built documents to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess bool

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ServeAddr is the listen address of the serve command.
	// Default: ":8080"
	ServeAddr string

	// MaxBodyBytes caps the size of an invoice document posted to the server.
	// Default: 1048576 (1 MiB)
	MaxBodyBytes int64
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - required: Whether configPath must exist. When false a missing file is
//     not an error; defaults and environment overrides still apply.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if a required file is missing, the file cannot be parsed or
//     the settings are invalid.
func LoadMainConfig(configPath string, required bool) (*MainConfig, error) {
	v := viper.New()

	v.SetDefault("continue_on_error", true)
	v.SetDefault("archive_on_success", true)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if required || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &MainConfig{
		InputDir:         v.GetString("input_dir"),
		OutputDir:        v.GetString("output_dir"),
		InputArchiveDir:  v.GetString("input_archive_dir"),
		OutputArchiveDir: v.GetString("output_archive_dir"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		LogFile:          v.GetString("log_file"),
		OutputNameFormat: v.GetString("output_name_format"),
		OutputFormat:     strings.ToLower(v.GetString("output_format")),
		Indent:           v.GetString("indent"),
		MaxConcurrency:   v.GetInt("max_concurrency"),
		ContinueOnError:  v.GetBool("continue_on_error"),
		ArchiveOnSuccess: v.GetBool("archive_on_success"),
		ServeAddr:        v.GetString("serve_addr"),
		MaxBodyBytes:     v.GetInt64("max_body_bytes"),
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.LogFile == "" {
		config.LogFile = "stderr"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{invoice_id}.json"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "json"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ServeAddr == "" {
		config.ServeAddr = ":8080"
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 1 << 20
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", config.LogFormat)
	}

	switch config.OutputFormat {
	case "json", "xml":
	default:
		return fmt.Errorf("unknown output_format %q", config.OutputFormat)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	if config.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative, got %d", config.MaxBodyBytes)
	}

	if strings.ContainsAny(config.OutputNameFormat, `/\`) {
		return fmt.Errorf("output_name_format must be a file name, got %q", config.OutputNameFormat)
	}

	return nil
}
