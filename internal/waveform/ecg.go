package waveform

import (
	"math"
	"math/rand"

	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// ECG generates an ECG trace
type ECG struct {
	osc oscillator
	rng *rand.Rand
	// t is free-running time in seconds, used by styles with no beat
	t float64
}

// NewECG creates an ECG generator sampling at fs Hz
func NewECG(fs float64, seed int64) *ECG {
	return &ECG{
		osc: newOscillator(fs),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next sample for the given style, paced by hr
func (g *ECG) Next(style rhythm.ECGStyle, hr int) float64 {
	g.t += 1 / g.osc.fs

	switch style {
	case rhythm.ECGFlat:
		return 0
	case rhythm.ECGVFib:
		return g.vfib()
	}

	if hr <= 0 {
		return 0
	}
	if g.osc.advance(float64(hr)) && style == rhythm.ECGAFib {
		g.osc.stretch = 0.7 + g.rng.Float64()*0.6
	}
	p := g.osc.phase

	switch style {
	case rhythm.ECGAFib:
		return qrst(p) + noise(g.rng, 0.04)
	case rhythm.ECGSVT:
		return qrst(p)
	case rhythm.ECGVT:
		return 0.9*math.Sin(2*math.Pi*p) + 0.2*math.Sin(4*math.Pi*p)
	case rhythm.ECGPaced:
		return 1.2*gauss(p, 0.10, 0.003) - 0.3*gauss(p, 0.13, 0.02) + 0.7*gauss(p, 0.20, 0.04) + 0.25*gauss(p, 0.55, 0.06)
	case rhythm.ECGAVBlock:
		// every third P wave is not conducted
		if g.osc.cycle%3 == 2 {
			return pWave(p)
		}
		return pWave(p) + qrst(p)
	default:
		return pWave(p) + qrst(p)
	}
}

func (g *ECG) vfib() float64 {
	t := g.t
	return 0.35*math.Sin(2*math.Pi*4.3*t) +
		0.25*math.Sin(2*math.Pi*6.1*t+1.3) +
		0.15*math.Sin(2*math.Pi*2.7*t+0.4) +
		noise(g.rng, 0.08)
}

func pWave(p float64) float64 {
	return 0.08 * gauss(p, 0.18, 0.03)
}

func qrst(p float64) float64 {
	q := -0.12 * gauss(p, 0.30, 0.01)
	r := 1.00 * gauss(p, 0.32, 0.008)
	s := -0.25 * gauss(p, 0.35, 0.012)
	t := 0.25 * gauss(p, 0.60, 0.06)
	return q + r + s + t
}
