package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rhythmsCmd = &cobra.Command{
	Use:   "rhythms",
	Short: "Inspect the rhythm profile table",
	Long:  `Commands for listing and describing the supported cardiac rhythms.`,
}

var listRhythmsCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rhythms",
	Long:  `Lists every rhythm in the profile table with its baseline vitals.`,
	RunE:  runListRhythms,
}

func init() {
	rhythmsCmd.AddCommand(listRhythmsCmd)
	rhythmsCmd.AddCommand(describeCmd)
}

func runListRhythms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Available rhythms:")
	fmt.Println()
	fmt.Printf("  %-10s %5s %5s %4s %9s  %s\n", "ID", "HR", "SPO2", "RR", "BP", "DESCRIPTION")
	for _, id := range table.IDs() {
		p := table.Lookup(id)
		fmt.Printf("  %-10s %5d %5d %4d %9s  %s\n",
			id, p.HeartRate, p.SpO2, p.RespirationRate,
			fmt.Sprintf("%d/%d", p.BloodPressure.Systolic, p.BloodPressure.Diastolic),
			table.Describe(id))
	}
	fmt.Println()

	return nil
}
