package simulator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

func newEngine(seed int64) (*Engine, *vitals.Store) {
	store := vitals.NewStore(rhythm.Builtin())
	config := DefaultConfig()
	config.Seed = seed
	return NewEngine(store, config, nil), store
}

func within(t *testing.T, name string, got, base int) {
	t.Helper()
	lo := 0.9 * float64(base)
	hi := 1.1 * float64(base)
	if float64(got) < lo || float64(got) > hi {
		t.Fatalf("%s = %d outside [%.1f, %.1f] of baseline %d", name, got, lo, hi, base)
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		base   int
		lo, hi int
	}{
		{180, 162, 198},
		{16, 15, 17},
		{98, 89, 107},
		{0, 0, 0},
		{8, 8, 8},
	}
	for _, tt := range tests {
		lo, hi := band(tt.base)
		assert.Equal(t, tt.lo, lo, "band(%d) lo", tt.base)
		assert.Equal(t, tt.hi, hi, "band(%d) hi", tt.base)
	}
}

func TestVary_ZeroBaselineStaysZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := int64(0); i < 100; i++ {
		assert.Equal(t, 0, vary(rng, 0, 2.5, i))
	}
}

func TestStep_StaysWithinBandForEveryRhythm(t *testing.T) {
	engine, store := newEngine(42)

	for _, id := range rhythm.All() {
		require.NoError(t, store.SetRhythm(id))
		base := store.Table().Lookup(id)

		for i := 0; i < 10000; i++ {
			s, ok := engine.Step()
			require.True(t, ok)
			within(t, "hr", s.HeartRate, base.HeartRate)
			within(t, "spo2", s.SpO2, base.SpO2)
			within(t, "rr", s.RespirationRate, base.RespirationRate)
			within(t, "sys", s.BloodPressure.Systolic, base.BloodPressure.Systolic)
			within(t, "dia", s.BloodPressure.Diastolic, base.BloodPressure.Diastolic)
			assert.LessOrEqual(t, s.SpO2, 100)
			assert.Equal(t, base.ECG, s.ECG)
			assert.False(t, s.Manual)
		}
	}
}

func TestStep_ProducesVariation(t *testing.T) {
	engine, store := newEngine(7)
	require.NoError(t, store.SetRhythm(rhythm.VT))

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		s, _ := engine.Step()
		seen[s.HeartRate] = true
	}
	assert.Greater(t, len(seen), 1, "heart rate never varied")
}

func TestStep_DeterministicForSeed(t *testing.T) {
	a, _ := newEngine(99)
	b, _ := newEngine(99)
	for i := 0; i < 50; i++ {
		sa, _ := a.Step()
		sb, _ := b.Step()
		assert.Equal(t, sa.Numbers(), sb.Numbers())
	}
}

func TestManualOverrideFreezesAllFields(t *testing.T) {
	engine, store := newEngine(3)
	for i := 0; i < 5; i++ {
		engine.Step()
	}

	store.SetHeartRate(200)
	frozen := store.Snapshot()

	for i := 0; i < 20; i++ {
		_, ok := engine.Step()
		assert.False(t, ok)
	}
	after := store.Snapshot()
	assert.Equal(t, frozen.Numbers(), after.Numbers())
	assert.Equal(t, frozen.Seq, after.Seq)
	assert.Equal(t, int64(25), engine.Ticks())
}

func TestVTScenario(t *testing.T) {
	engine, store := newEngine(2024)

	require.NoError(t, store.SetRhythm(rhythm.VT))
	s := store.Snapshot()
	assert.Equal(t, 180, s.HeartRate)
	assert.Equal(t, 88, s.SpO2)
	assert.Equal(t, 24, s.RespirationRate)
	assert.Equal(t, rhythm.BloodPressure{Systolic: 90, Diastolic: 60}, s.BloodPressure)
	assert.False(t, s.Manual)

	store.SetHeartRate(50)
	s = store.Snapshot()
	assert.Equal(t, 50, s.HeartRate)
	assert.True(t, s.Manual)

	for i := 0; i < 5; i++ {
		engine.Step()
		assert.Equal(t, 50, store.Snapshot().HeartRate)
	}

	require.NoError(t, store.SetRhythm(rhythm.VT))
	s = store.Snapshot()
	assert.Equal(t, 180, s.HeartRate)
	assert.False(t, s.Manual)

	for i := 0; i < 100; i++ {
		s, ok := engine.Step()
		require.True(t, ok)
		assert.GreaterOrEqual(t, s.HeartRate, 162)
		assert.LessOrEqual(t, s.HeartRate, 198)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	engine, _ := newEngine(1)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx, ticker) }()

	time.Sleep(40 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after cancel")
	}
	assert.Greater(t, engine.Ticks(), int64(0))
}
