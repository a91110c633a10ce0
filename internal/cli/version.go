package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the build version, overridable at link time.
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the courtsync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("courtsync %s (%s)\n", Version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
