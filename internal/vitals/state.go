package vitals

import (
	"time"

	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// Mode says whether the simulation engine is allowed to move the numbers
type Mode int

const (
	RhythmDriven Mode = iota
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "rhythm"
}

// State is a self-consistent copy of the monitor's current vitals
type State struct {
	HeartRate       int                  `json:"hr"`
	BloodPressure   rhythm.BloodPressure `json:"bp"`
	SpO2            int                  `json:"spo2"`
	RespirationRate int                  `json:"rr"`

	Rhythm   rhythm.ID        `json:"rhythm"`
	ECG      rhythm.ECGStyle  `json:"ecg_style"`
	Resp     rhythm.RespStyle `json:"resp_style"`
	SpO2Wave rhythm.SpO2Style `json:"spo2_style"`

	// Manual is set by any single-field override and cleared by rhythm selection
	Manual bool `json:"manual"`

	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Mode derives the engine mode from the manual flag
func (s State) Mode() Mode {
	if s.Manual {
		return Manual
	}
	return RhythmDriven
}

// FromProfile builds the state a rhythm selection produces
func FromProfile(p rhythm.Profile) State {
	return State{
		HeartRate:       p.HeartRate,
		BloodPressure:   p.BloodPressure,
		SpO2:            p.SpO2,
		RespirationRate: p.RespirationRate,
		Rhythm:          p.ID,
		ECG:             p.ECG,
		Resp:            p.Resp,
		SpO2Wave:        p.SpO2Wave,
	}
}

// Numbers holds only the simulated numeric fields
type Numbers struct {
	HeartRate       int
	BloodPressure   rhythm.BloodPressure
	SpO2            int
	RespirationRate int
}

// Numbers returns the numeric part of the state
func (s State) Numbers() Numbers {
	return Numbers{
		HeartRate:       s.HeartRate,
		BloodPressure:   s.BloodPressure,
		SpO2:            s.SpO2,
		RespirationRate: s.RespirationRate,
	}
}
