package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "synheart-monitor",
	Short: "Synheart Monitor - simulated bedside vitals monitor",
	Long: `Synheart Monitor simulates a bedside patient monitor for training,
demos and UI development.

It keeps heart rate, blood pressure, SpO2 and respiration rate moving
around the baseline of a selected cardiac rhythm, raises the critical
alarm, and streams display frames with ECG, respiration and pleth
traces to local display clients.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(rhythmsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}
