package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd reports which build of graphgate is running.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the graphgate build details",
	Long: `Report the release version together with the commit it was cut from,
the build timestamp and the Go runtime. The values are stamped in through
linker flags by the release pipeline; a plain source build reports "dev".

Examples:
  # Check which build a host is running
  graphgate version`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("graphgate %s\n", version)
		cmd.Printf("  commit:  %s\n", commit)
		cmd.Printf("  built:   %s\n", date)
		cmd.Printf("  runtime: %s\n", runtime.Version())
	},
}
