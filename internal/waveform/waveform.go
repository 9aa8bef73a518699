// Package waveform produces display traces for the ECG, respiration and
// pleth channels from a vitals snapshot. The shapes are recognisable, not
// clinically accurate.
package waveform

import (
	"math"
	"math/rand"
)

// oscillator advances a phase in [0,1) at a rate given in cycles per minute
type oscillator struct {
	fs    float64
	phase float64
	cycle int64
	// stretch scales the current cycle's length; 1 is regular
	stretch float64
}

func newOscillator(fs float64) oscillator {
	return oscillator{fs: fs, stretch: 1}
}

// advance moves the phase one sample forward and reports whether a new
// cycle began
func (o *oscillator) advance(perMinute float64) bool {
	if perMinute <= 0 {
		return false
	}
	o.phase += perMinute / 60.0 / o.fs / o.stretch
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
		o.cycle++
		return true
	}
	return false
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func noise(rng *rand.Rand, amp float64) float64 {
	return (rng.Float64()*2 - 1) * amp
}
