package waveform

import (
	"math"
	"math/rand"

	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// Resp generates a respiration trace
type Resp struct {
	osc   oscillator
	rng   *rand.Rand
	depth float64
}

// NewResp creates a respiration generator sampling at fs Hz
func NewResp(fs float64, seed int64) *Resp {
	return &Resp{
		osc:   newOscillator(fs),
		rng:   rand.New(rand.NewSource(seed)),
		depth: 1,
	}
}

// Next returns the next sample for the given style, paced by rr
func (g *Resp) Next(style rhythm.RespStyle, rr int) float64 {
	if style == rhythm.RespFlat || rr <= 0 {
		return 0
	}

	newBreath := g.osc.advance(float64(rr))
	if newBreath && style == rhythm.RespIrregular {
		g.depth = 0.4 + g.rng.Float64()*0.8
		g.osc.stretch = 0.6 + g.rng.Float64()*0.8
	}
	wave := math.Sin(2 * math.Pi * g.osc.phase)

	switch style {
	case rhythm.RespRapid:
		return 0.6 * wave
	case rhythm.RespSlow:
		return 1.2 * wave
	case rhythm.RespIrregular:
		return g.depth * wave
	default:
		return wave
	}
}
