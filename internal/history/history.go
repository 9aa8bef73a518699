package history

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

// Entry is one row of the review table
type Entry struct {
	ID              string               `json:"id"`
	Timestamp       time.Time            `json:"ts"`
	Clock           string               `json:"clock"` // "15:04"
	HeartRate       int                  `json:"hr"`
	BloodPressure   rhythm.BloodPressure `json:"bp"`
	SpO2            int                  `json:"spo2"`
	RespirationRate int                  `json:"rr"`
	Rhythm          rhythm.ID            `json:"rhythm"`
}

// Window keeps the most recent entries, newest first
type Window struct {
	size    int
	entries []Entry
	entropy *ulid.MonotonicEntropy
	mu      sync.RWMutex
}

// NewWindow creates a window holding at most size entries
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{
		size:    size,
		entries: make([]Entry, 0, size),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Add records a snapshot taken at ts and returns the new entry
func (w *Window) Add(s vitals.State, ts time.Time) Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := Entry{
		ID:              ulid.MustNew(ulid.Timestamp(ts), w.entropy).String(),
		Timestamp:       ts,
		Clock:           ts.Format("15:04"),
		HeartRate:       s.HeartRate,
		BloodPressure:   s.BloodPressure,
		SpO2:            s.SpO2,
		RespirationRate: s.RespirationRate,
		Rhythm:          s.Rhythm,
	}

	w.entries = append([]Entry{e}, w.entries...)
	if len(w.entries) > w.size {
		w.entries = w.entries[:w.size]
	}
	return e
}

// Entries returns a copy of the window, newest first
func (w *Window) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of retained entries
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// Snapshotter is anything that can hand out a consistent vitals snapshot
type Snapshotter interface {
	Snapshot() vitals.State
}

// Sampler copies the store into the window on its own timer, independent of
// the simulation tick
type Sampler struct {
	source Snapshotter
	window *Window
	log    *zap.Logger
	now    func() time.Time
}

// NewSampler creates a sampler feeding window from source
func NewSampler(source Snapshotter, window *Window, log *zap.Logger) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sampler{
		source: source,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Sample takes one entry immediately
func (s *Sampler) Sample() Entry {
	e := s.window.Add(s.source.Snapshot(), s.now())
	s.log.Debug("review entry recorded",
		zap.String("id", e.ID),
		zap.Int("hr", e.HeartRate),
		zap.Int("spo2", e.SpO2),
	)
	return e
}

// Run samples once right away, then on every ticker fire until ctx is done
func (s *Sampler) Run(ctx context.Context, ticker *time.Ticker) error {
	s.Sample()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sample()
		}
	}
}
