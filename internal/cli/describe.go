package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

var describeCmd = &cobra.Command{
	Use:   "describe <rhythm>",
	Short: "Describe a rhythm in detail",
	Long:  `Shows the baseline vitals, waveform styles and alarm state of a rhythm.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	id, err := rhythm.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	p := table.Lookup(id)
	a := alert.Evaluate(vitals.FromProfile(p))

	fmt.Printf("Rhythm: %s\n", p.ID)
	fmt.Printf("Description: %s\n\n", p.Description)

	fmt.Println("Baseline:")
	fmt.Printf("  Heart rate:       %d bpm\n", p.HeartRate)
	fmt.Printf("  Blood pressure:   %d/%d mmHg\n", p.BloodPressure.Systolic, p.BloodPressure.Diastolic)
	fmt.Printf("  SpO2:             %d %%\n", p.SpO2)
	fmt.Printf("  Respiration rate: %d /min\n\n", p.RespirationRate)

	fmt.Println("Waveforms:")
	fmt.Printf("  ECG:   %s\n", p.ECG)
	fmt.Printf("  Resp:  %s\n", p.Resp)
	fmt.Printf("  Pleth: %s\n\n", p.SpO2Wave)

	fmt.Printf("Critical at baseline: %v\n", a.Critical)
	if len(a.OutOfRange) > 0 {
		fmt.Printf("Out of range:         %v\n", a.OutOfRange)
	}
	fmt.Println()
	return nil
}
