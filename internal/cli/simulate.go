package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synheart/synheart-monitor/internal/monitor"
)

var (
	simTicks         int
	simRhythm        string
	simSeed          int64
	simFormat        string
	simHR            string
	simBP            string
	simSpO2          string
	simRR            string
	simOverrideAfter int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulation headless and print every tick",
	Long: `Runs the simulation for a fixed number of ticks without timers or
display feeds and prints each snapshot. Manual values given with
--hr, --bp, --spo2 or --rr are entered after --override-after ticks.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simTicks, "ticks", 10, "Number of ticks to run")
	simulateCmd.Flags().StringVar(&simRhythm, "rhythm", "", "Rhythm to simulate (defaults to the configured rhythm)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed for deterministic output (0 picks one)")
	simulateCmd.Flags().StringVar(&simFormat, "format", "text", "Output format: text|ndjson")
	simulateCmd.Flags().StringVar(&simHR, "hr", "", "Manual heart rate")
	simulateCmd.Flags().StringVar(&simBP, "bp", "", "Manual blood pressure as SYS/DIA")
	simulateCmd.Flags().StringVar(&simSpO2, "spo2", "", "Manual SpO2")
	simulateCmd.Flags().StringVar(&simRR, "rr", "", "Manual respiration rate")
	simulateCmd.Flags().IntVar(&simOverrideAfter, "override-after", 0, "Ticks to run before entering manual values")
}

// overrideCommands builds the manual entry commands requested on the
// command line
func overrideCommands(hr, bp, spo2, rr string) ([]monitor.Command, error) {
	var cmds []monitor.Command
	if hr != "" {
		cmds = append(cmds, monitor.Command{Type: monitor.CmdSetHeartRate, Value: monitor.Input(hr)})
	}
	if bp != "" {
		sys, dia, ok := strings.Cut(bp, "/")
		if !ok {
			return nil, fmt.Errorf("%w: blood pressure must be SYS/DIA, got %q", monitor.ErrInvalidInput, bp)
		}
		cmds = append(cmds, monitor.Command{
			Type:      monitor.CmdSetBloodPressure,
			Systolic:  monitor.Input(sys),
			Diastolic: monitor.Input(dia),
		})
	}
	if spo2 != "" {
		cmds = append(cmds, monitor.Command{Type: monitor.CmdSetSpO2, Value: monitor.Input(spo2)})
	}
	if rr != "" {
		cmds = append(cmds, monitor.Command{Type: monitor.CmdSetRespirationRate, Value: monitor.Input(rr)})
	}
	return cmds, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simTicks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if simFormat != "text" && simFormat != "ndjson" {
		return fmt.Errorf("unknown format %q (want text or ndjson)", simFormat)
	}

	overrides, err := overrideCommands(simHR, simBP, simSpO2, simRR)
	if err != nil {
		return err
	}
	if len(overrides) > 0 && (simOverrideAfter < 0 || simOverrideAfter >= simTicks) {
		return fmt.Errorf("override-after must be between 0 and %d", simTicks-1)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if simRhythm != "" {
		cfg.Monitor.Rhythm = simRhythm
	}
	if cmd.Flags().Changed("seed") {
		cfg.Monitor.Seed = simSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	opts, err := monitorOptions(cfg, table, logger)
	if err != nil {
		return err
	}
	m, err := monitor.New(opts)
	if err != nil {
		return err
	}

	for _, c := range overrides {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	out := os.Stdout
	enc := json.NewEncoder(out)
	if simFormat == "text" {
		writeHeader(out)
	}

	for tick := 1; tick <= simTicks; tick++ {
		if tick-1 == simOverrideAfter {
			for _, c := range overrides {
				if err := m.Apply(c); err != nil {
					return err
				}
			}
		}

		frame := m.Step()
		if simFormat == "ndjson" {
			if err := enc.Encode(frame); err != nil {
				return fmt.Errorf("failed to encode frame: %w", err)
			}
			continue
		}
		writeRow(out, tick, frame)
	}
	return nil
}
