package waveform

import (
	"math/rand"

	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// Pleth generates the SpO2 plethysmograph trace, one pulse per heart beat
type Pleth struct {
	osc oscillator
	rng *rand.Rand
}

// NewPleth creates a pleth generator sampling at fs Hz
func NewPleth(fs float64, seed int64) *Pleth {
	return &Pleth{
		osc: newOscillator(fs),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next sample for the given style, paced by hr
func (g *Pleth) Next(style rhythm.SpO2Style, hr int) float64 {
	if style == rhythm.SpO2Flat || hr <= 0 {
		return 0
	}

	g.osc.advance(float64(hr))
	pulse := 0.9*gauss(g.osc.phase, 0.25, 0.08) + 0.3*gauss(g.osc.phase, 0.55, 0.07)

	switch style {
	case rhythm.SpO2Weak:
		return 0.35 * pulse
	case rhythm.SpO2Noisy:
		return pulse + noise(g.rng, 0.15)
	default:
		return pulse
	}
}
