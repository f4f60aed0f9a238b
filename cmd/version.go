// =============================================================================
// UBL Invoice Builder - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   ublinvoice version
//
// OUTPUT:
//   UBL Invoice Builder
//   Version:     1.0.0
//   UBL Version: 2.1
//   Build Date:  unknown
//   Go Version:  go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/UBL-invoice-builder/cmd.Version=1.0.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

// UBLVersion is the UBL release the generated documents conform to.
const UBLVersion = "2.1"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, the UBL release it targets, the build date and the Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "UBL Invoice Builder")
		fmt.Fprintf(out, "Version:     %s\n", Version)
		fmt.Fprintf(out, "UBL Version: %s\n", UBLVersion)
		fmt.Fprintf(out, "Build Date:  %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version:  %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
