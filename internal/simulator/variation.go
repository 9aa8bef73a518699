package simulator

import (
	"math"
	"math/rand"
)

// Spread is the normal clinical variation of each simulated field, before
// the variation factor is applied
type Spread struct {
	HeartRate       float64
	SpO2            float64
	RespirationRate float64
	Systolic        float64
	Diastolic       float64
}

// DefaultSpread matches the bedside monitor's normal-range table
var DefaultSpread = Spread{
	HeartRate:       5,
	SpO2:            1,
	RespirationRate: 2,
	Systolic:        5,
	Diastolic:       3,
}

// Scale multiplies every spread by factor, giving per-field amplitudes
func (s Spread) Scale(factor float64) Spread {
	return Spread{
		HeartRate:       s.HeartRate * factor,
		SpO2:            s.SpO2 * factor,
		RespirationRate: s.RespirationRate * factor,
		Systolic:        s.Systolic * factor,
		Diastolic:       s.Diastolic * factor,
	}
}

// vary computes one field's next value around base. The result is an integer
// no further than 10% from base; base 0 pins the value at 0.
func vary(rng *rand.Rand, base int, amp float64, tick int64) int {
	b := float64(base)

	random := (rng.Float64()*2 - 1) * amp
	periodic := math.Sin(float64(tick)/10.0) * amp

	value := clamp(b+random+periodic, b*0.9, b*1.1)

	lo, hi := band(base)
	return clampInt(int(math.Round(value)), lo, hi)
}

// band returns the integer range inside [0.9*base, 1.1*base]
func band(base int) (int, int) {
	if base <= 0 {
		return base, base
	}
	return (9*base + 9) / 10, (11 * base) / 10
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
