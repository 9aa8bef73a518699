package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

// Config holds engine configuration
type Config struct {
	Seed            int64
	VariationFactor float64
	Spread          Spread
}

// DefaultConfig returns the monitor's standard variation settings
func DefaultConfig() Config {
	return Config{
		Seed:            time.Now().UnixNano(),
		VariationFactor: 0.5,
		Spread:          DefaultSpread,
	}
}

// Engine nudges the store's vitals around the active rhythm's baseline once
// per tick. It does nothing while the store is in manual mode.
type Engine struct {
	store *vitals.Store
	amp   Spread
	log   *zap.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	tick int64
}

// NewEngine creates a simulation engine writing into store
func NewEngine(store *vitals.Store, config Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store: store,
		amp:   config.Spread.Scale(config.VariationFactor),
		log:   log,
		rng:   rand.New(rand.NewSource(config.Seed)),
	}
}

// Run steps the engine on every ticker fire until ctx is cancelled
func (e *Engine) Run(ctx context.Context, ticker *time.Ticker) error {
	e.log.Info("simulation engine started")
	defer e.log.Info("simulation engine stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step performs a single tick. It returns false when the store is manual and
// nothing was changed.
func (e *Engine) Step() (vitals.State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// the counter is wall-clock ticks: it advances on skipped manual ticks
	// too, so the periodic term resumes in phase when rhythm mode returns
	e.tick++
	t := e.tick

	state, ok := e.store.Advance(func(_ vitals.Numbers, base rhythm.Profile) vitals.Numbers {
		return e.next(base, t)
	})
	if !ok {
		e.log.Debug("tick skipped, manual mode", zap.Int64("tick", t))
		return state, false
	}

	if ce := e.log.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Int64("tick", t),
			zap.String("rhythm", state.Rhythm.String()),
			zap.Int("hr", state.HeartRate),
			zap.Int("spo2", state.SpO2),
			zap.Int("rr", state.RespirationRate),
			zap.Int("sys", state.BloodPressure.Systolic),
			zap.Int("dia", state.BloodPressure.Diastolic),
		)
	}
	return state, true
}

// Ticks returns the number of ticks performed so far
func (e *Engine) Ticks() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

func (e *Engine) next(base rhythm.Profile, t int64) vitals.Numbers {
	spo2 := vary(e.rng, base.SpO2, e.amp.SpO2, t)
	if spo2 > 100 {
		spo2 = 100
	}

	return vitals.Numbers{
		HeartRate:       vary(e.rng, base.HeartRate, e.amp.HeartRate, t),
		SpO2:            spo2,
		RespirationRate: vary(e.rng, base.RespirationRate, e.amp.RespirationRate, t),
		BloodPressure: rhythm.BloodPressure{
			Systolic:  vary(e.rng, base.BloodPressure.Systolic, e.amp.Systolic, t),
			Diastolic: vary(e.rng, base.BloodPressure.Diastolic, e.amp.Diastolic, t),
		},
	}
}
