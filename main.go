// =============================================================================
// UBL Invoice Builder - Main Entry Point
// =============================================================================
//
// USAGE:
//   ublinvoice build       - Build every invoice document in the input directory
//   ublinvoice validate    - Validate invoice documents without writing output
//   ublinvoice serve       - Serve the HTTP API
//   ublinvoice version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/validation  : scalar validators for UBL leaf values
//   - internal/invoice     : party, line and invoice builders
//   - internal/jsonwriter  : UBL JSON serializer
//   - internal/xmlwriter   : UBL XML serializer
//   - internal/converter   : per-document build pipeline
//   - internal/config      : application config and invoice documents
//   - internal/csvparser   : CSV line sheets
//   - internal/xlsxparser  : XLSX line sheets
//   - internal/server      : HTTP API (gin)
//   - internal/logger      : zap logger construction
//   - pkg/utils            : file discovery, output, archival and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/UBL-invoice-builder/cmd"
)

func main() {
	cmd.Execute()
}
