package cli

import (
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the simulated monitor",
	Long:  `Commands for running the monitor with live display feeds or headless.`,
}

func init() {
	monitorCmd.AddCommand(startCmd)
	monitorCmd.AddCommand(simulateCmd)
}
