package waveform

import (
	"sync"

	"github.com/synheart/synheart-monitor/internal/vitals"
)

// Samples is one batch of trace samples per channel
type Samples struct {
	ECG   []float64 `json:"ecg"`
	Resp  []float64 `json:"resp"`
	Pleth []float64 `json:"pleth"`
}

// Set renders all three channels from vitals snapshots
type Set struct {
	SampleRate float64

	mu    sync.Mutex
	ecg   *ECG
	resp  *Resp
	pleth *Pleth
}

// NewSet creates generators for every channel at fs Hz
func NewSet(fs float64, seed int64) *Set {
	return &Set{
		SampleRate: fs,
		ecg:        NewECG(fs, seed),
		resp:       NewResp(fs, seed+1),
		pleth:      NewPleth(fs, seed+2),
	}
}

// Render produces n samples per channel paced by the snapshot
func (s *Set) Render(state vitals.State, n int) Samples {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Samples{
		ECG:   make([]float64, n),
		Resp:  make([]float64, n),
		Pleth: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		out.ECG[i] = s.ecg.Next(state.ECG, state.HeartRate)
		out.Resp[i] = s.resp.Next(state.Resp, state.RespirationRate)
		out.Pleth[i] = s.pleth.Next(state.SpO2Wave, state.HeartRate)
	}
	return out
}
