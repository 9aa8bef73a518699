package alert

import "github.com/synheart/synheart-monitor/internal/vitals"

// Field names a vital that can be flagged as out of range
type Field string

const (
	HeartRate   Field = "hr"
	SpO2        Field = "spo2"
	Systolic    Field = "sys"
	Diastolic   Field = "dia"
	Respiration Field = "rr"
)

// Display thresholds. The audible alarm only uses the heart rate and
// saturation limits.
const (
	MaxHeartRate   = 120
	MinSpO2        = 92
	MinSystolic    = 90
	MaxSystolic    = 140
	MinDiastolic   = 60
	MaxDiastolic   = 90
	MinRespiration = 10
	MaxRespiration = 24
)

// IsCritical reports the life-threatening condition that drives the audible alarm
func IsCritical(hr, spo2 int) bool {
	return hr > MaxHeartRate || spo2 < MinSpO2
}

// STElevated reports whether the "ST HIGHER" badge is shown
func STElevated(hr int) bool {
	return hr > MaxHeartRate
}

// OutOfRange lists every field outside its normal display range. It is
// broader than IsCritical and only drives highlighting.
func OutOfRange(s vitals.State) []Field {
	var out []Field
	if s.HeartRate > MaxHeartRate {
		out = append(out, HeartRate)
	}
	if s.SpO2 < MinSpO2 {
		out = append(out, SpO2)
	}
	if s.BloodPressure.Systolic < MinSystolic || s.BloodPressure.Systolic > MaxSystolic {
		out = append(out, Systolic)
	}
	if s.BloodPressure.Diastolic < MinDiastolic || s.BloodPressure.Diastolic > MaxDiastolic {
		out = append(out, Diastolic)
	}
	if s.RespirationRate < MinRespiration || s.RespirationRate > MaxRespiration {
		out = append(out, Respiration)
	}
	return out
}

// Assessment is the alert view of one snapshot
type Assessment struct {
	Critical   bool    `json:"critical"`
	STElevated bool    `json:"st_elevated"`
	OutOfRange []Field `json:"out_of_range,omitempty"`
}

// Evaluate computes every alert predicate for s
func Evaluate(s vitals.State) Assessment {
	return Assessment{
		Critical:   IsCritical(s.HeartRate, s.SpO2),
		STElevated: STElevated(s.HeartRate),
		OutOfRange: OutOfRange(s),
	}
}

// Flagged reports whether f is in the out-of-range list
func (a Assessment) Flagged(f Field) bool {
	for _, v := range a.OutOfRange {
		if v == f {
			return true
		}
	}
	return false
}
