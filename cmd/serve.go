// =============================================================================
// UBL Invoice Builder - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP API.
//
// COMMAND USAGE:
//   ublinvoice serve [flags]
//
// FLAGS:
//   --addr : Listen address (overrides serve_addr)
//
// The server stops on SIGINT or SIGTERM after in-flight requests finish.
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the invoice builder over HTTP",
	Long: `The serve command starts an HTTP server that builds invoices on request.

Routes:
  POST /v1/invoices            Build a posted invoice document (YAML or JSON)
                               ?format=json|xml  ?indent=true|false
  POST /v1/invoices/validate   Build only and return an invoice summary
  GET  /healthz                Liveness check
  GET  /version                Version information

Posted documents must carry their lines inline.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		mainConfig, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if serveAddr != "" {
			mainConfig.ServeAddr = serveAddr
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(mainConfig,
			server.WithLogger(log),
			server.WithVersion(Version))

		log.Info("starting server",
			zap.String("addr", mainConfig.ServeAddr),
			zap.Int64("max_body_bytes", mainConfig.MaxBodyBytes),
			zap.String("output_format", mainConfig.OutputFormat))

		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&serveAddr,
		"addr",
		"",
		"Listen address, e.g. :8080 (default: serve_addr from config)",
	)
}
