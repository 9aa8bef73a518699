package vitals

import (
	"fmt"
	"sync"
	"time"

	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// Store owns the monitor's single mutable vitals state. Every mutation is
// applied under one write lock and readers only ever receive copies, so a
// reader never sees half of an update.
type Store struct {
	table *rhythm.Table
	state State
	mu    sync.RWMutex

	subscribers map[int]chan State
	nextSub     int
}

// NewStore creates a store holding the default rhythm's profile
func NewStore(table *rhythm.Table) *Store {
	s := &Store{
		table:       table,
		subscribers: make(map[int]chan State),
	}
	s.state = FromProfile(table.Lookup(rhythm.Default))
	s.state.UpdatedAt = time.Now()
	return s
}

// Table returns the profile table the store resolves rhythms against
func (s *Store) Table() *rhythm.Table {
	return s.table
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetRhythm replaces every field from the rhythm's profile and returns the
// store to rhythm-driven mode. Unknown rhythms are rejected before anything
// changes.
func (s *Store) SetRhythm(id rhythm.ID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", rhythm.ErrUnknownRhythm, string(id))
	}
	profile := s.table.Lookup(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(FromProfile(profile))
	return nil
}

// Reset returns the store to the default rhythm
func (s *Store) Reset() {
	profile := s.table.Lookup(rhythm.Default)

	s.mu.Lock()
	defer s.mu.Unlock()
	next := FromProfile(profile)
	next.Manual = false
	s.commit(next)
}

// SetHeartRate overrides the heart rate and switches to manual mode
func (s *Store) SetHeartRate(v int) {
	s.override(func(st *State) { st.HeartRate = v })
}

// SetBloodPressure overrides both pressures and switches to manual mode
func (s *Store) SetBloodPressure(sys, dia int) {
	s.override(func(st *State) {
		st.BloodPressure = rhythm.BloodPressure{Systolic: sys, Diastolic: dia}
	})
}

// SetSpO2 overrides the saturation and switches to manual mode
func (s *Store) SetSpO2(v int) {
	s.override(func(st *State) { st.SpO2 = v })
}

// SetRespirationRate overrides the respiration rate and switches to manual mode
func (s *Store) SetRespirationRate(v int) {
	s.override(func(st *State) { st.RespirationRate = v })
}

func (s *Store) override(apply func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	apply(&next)
	next.Manual = true
	s.commit(next)
}

// AdvanceFunc computes the next numeric values from the current ones and the
// active rhythm's profile
type AdvanceFunc func(current Numbers, baseline rhythm.Profile) Numbers

// Advance is the simulation engine's write path. The manual flag is checked
// and the new values are computed and committed while holding the write lock,
// so an override can never be overwritten by a tick computed from older
// state. It reports false without calling fn when the store is manual.
func (s *Store) Advance(fn AdvanceFunc) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Manual {
		return s.state, false
	}

	n := fn(s.state.Numbers(), s.table.Lookup(s.state.Rhythm))
	next := s.state
	next.HeartRate = n.HeartRate
	next.BloodPressure = n.BloodPressure
	next.SpO2 = n.SpO2
	next.RespirationRate = n.RespirationRate
	s.commit(next)
	return s.state, true
}

// Subscribe returns a channel that receives the state after every committed
// change. When a subscriber falls behind, its oldest pending snapshot is
// dropped so the newest one is always delivered.
func (s *Store) Subscribe(buffer int) (<-chan State, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan State, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// commit must be called with the write lock held
func (s *Store) commit(next State) {
	next.Seq = s.state.Seq + 1
	next.UpdatedAt = time.Now()
	s.state = next

	for _, ch := range s.subscribers {
		select {
		case ch <- next:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}
