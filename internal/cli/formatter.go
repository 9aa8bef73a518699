package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/models"
)

func renderBar(score float64, width int) string {
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// mark flags an out-of-range value for the text table
func mark(a alert.Assessment, f alert.Field) string {
	if a.Flagged(f) {
		return "!"
	}
	return " "
}

func writeHeader(w io.Writer) {
	fmt.Fprintf(w, "%5s  %-9s %5s  %-9s %5s  %-10s %4s  %-6s  %s\n",
		"TICK", "RHYTHM", "HR", "BP", "SPO2", "", "RR", "MODE", "ALARM")
}

func writeRow(w io.Writer, tick int, f models.Frame) {
	v := f.Vitals
	a := f.Alerts

	bp := fmt.Sprintf("%d/%d", v.BloodPressure.Systolic, v.BloodPressure.Diastolic)
	bpMark := " "
	if a.Flagged(alert.Systolic) || a.Flagged(alert.Diastolic) {
		bpMark = "!"
	}

	var status []string
	if a.Critical {
		status = append(status, "CRITICAL")
	}
	if a.STElevated {
		status = append(status, "ST HIGHER")
	}

	fmt.Fprintf(w, "%5d  %-9s %4d%s  %-8s%s %4d%s  %-10s %3d%s  %-6s  %s\n",
		tick,
		v.Rhythm,
		v.HeartRate, mark(a, alert.HeartRate),
		bp, bpMark,
		v.SpO2, mark(a, alert.SpO2),
		renderBar(float64(v.SpO2)/100, 10),
		v.RespirationRate, mark(a, alert.Respiration),
		f.Session.Mode,
		strings.Join(status, " "))
}
