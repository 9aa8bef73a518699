// Package monitor assembles the bedside monitor: the vitals store, the
// simulation engine, the review history, the alarm and the display frames
// produced from them.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/history"
	"github.com/synheart/synheart-monitor/internal/models"
	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/simulator"
	"github.com/synheart/synheart-monitor/internal/vitals"
	"github.com/synheart/synheart-monitor/internal/waveform"
)

// Options configures a Monitor
type Options struct {
	// Table defaults to the built-in rhythm table
	Table  *rhythm.Table
	Rhythm rhythm.ID
	// Seed 0 picks a time-based seed
	Seed            int64
	VariationFactor float64

	TickInterval   time.Duration
	FrameInterval  time.Duration
	ReviewInterval time.Duration
	ReviewSize     int
	SampleRate     float64

	// Alarm defaults to a silent annunciator
	Alarm alert.Annunciator
	// FrameBuffer is the capacity of the Frames channel
	FrameBuffer int
	Log         *zap.Logger
}

// DefaultOptions returns the standard monitor cadence
func DefaultOptions() Options {
	return Options{
		Rhythm:          rhythm.Default,
		VariationFactor: 0.5,
		TickInterval:    time.Second,
		FrameInterval:   40 * time.Millisecond,
		ReviewInterval:  30 * time.Second,
		ReviewSize:      5,
		SampleRate:      250,
		FrameBuffer:     100,
	}
}

type silent struct{}

func (silent) Start() {}
func (silent) Stop()  {}

// Monitor owns one simulated patient
type Monitor struct {
	opts    Options
	session models.Session
	log     *zap.Logger

	store   *vitals.Store
	engine  *simulator.Engine
	window  *history.Window
	sampler *history.Sampler
	alarms  *alert.Controller
	waves   *waveform.Set

	frames   chan models.Frame
	sequence int64
	started  atomic.Bool
}

// New creates a monitor showing opts.Rhythm
func New(opts Options) (*Monitor, error) {
	defaults := DefaultOptions()
	if opts.Table == nil {
		opts.Table = rhythm.Builtin()
	}
	if opts.Rhythm == "" {
		opts.Rhythm = defaults.Rhythm
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.TickInterval < 0 || opts.FrameInterval < 0 || opts.ReviewInterval < 0 {
		return nil, fmt.Errorf("intervals must not be negative")
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if opts.FrameInterval == 0 {
		opts.FrameInterval = defaults.FrameInterval
	}
	if opts.ReviewInterval == 0 {
		opts.ReviewInterval = defaults.ReviewInterval
	}
	if opts.ReviewSize <= 0 {
		opts.ReviewSize = defaults.ReviewSize
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaults.SampleRate
	}
	if opts.FrameBuffer <= 0 {
		opts.FrameBuffer = defaults.FrameBuffer
	}
	if opts.Alarm == nil {
		opts.Alarm = silent{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	store := vitals.NewStore(opts.Table)
	if err := store.SetRhythm(opts.Rhythm); err != nil {
		return nil, err
	}

	window := history.NewWindow(opts.ReviewSize)
	engine := simulator.NewEngine(store, simulator.Config{
		Seed:            opts.Seed,
		VariationFactor: opts.VariationFactor,
		Spread:          simulator.DefaultSpread,
	}, opts.Log.Named("engine"))

	m := &Monitor{
		opts:    opts,
		session: models.Session{RunID: uuid.NewString(), Seed: opts.Seed},
		log:     opts.Log,
		store:   store,
		engine:  engine,
		window:  window,
		sampler: history.NewSampler(store, window, opts.Log.Named("history")),
		alarms:  alert.NewController(opts.Alarm, opts.Log.Named("alarm")),
		waves:   waveform.NewSet(opts.SampleRate, opts.Seed),
		frames:  make(chan models.Frame, opts.FrameBuffer),
	}
	return m, nil
}

// Store exposes the vitals store
func (m *Monitor) Store() *vitals.Store {
	return m.store
}

// Session describes this run
func (m *Monitor) Session() models.Session {
	s := m.session
	s.Mode = m.store.Snapshot().Mode().String()
	return s
}

// Review returns the review history, newest first
func (m *Monitor) Review() []history.Entry {
	return m.window.Entries()
}

// AlarmActive reports whether the critical alarm is sounding
func (m *Monitor) AlarmActive() bool {
	return m.alarms.Active()
}

// Frames returns the display frame stream. It is closed when Run returns.
func (m *Monitor) Frames() <-chan models.Frame {
	return m.frames
}

// Apply validates and executes one operator command
func (m *Monitor) Apply(cmd Command) error {
	act, err := cmd.compile()
	if err != nil {
		return err
	}
	if err := act(m.store); err != nil {
		return err
	}
	m.log.Info("command applied",
		zap.String("type", string(cmd.Type)),
		zap.String("mode", m.store.Snapshot().Mode().String()))
	return nil
}

// HandleCommand decodes a JSON command from a display client, applies it and
// returns the JSON reply
func (m *Monitor) HandleCommand(msg []byte) []byte {
	var cmd Command
	reply := Reply{}

	if err := json.Unmarshal(msg, &cmd); err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		reply.Error = err.Error()
	} else {
		reply.Type = cmd.Type
		if err := m.Apply(cmd); err != nil {
			m.log.Debug("command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
			reply.Error = err.Error()
		} else {
			state := m.store.Snapshot()
			reply.OK = true
			reply.Vitals = &state
		}
	}

	data, err := json.Marshal(reply)
	if err != nil {
		m.log.Error("failed to encode reply", zap.Error(err))
		return nil
	}
	return data
}

// Step advances the simulation by one tick without timers and returns the
// resulting frame. The alarm observes every step.
func (m *Monitor) Step() models.Frame {
	m.engine.Step()
	frame := m.frame(false)
	m.alarms.Observe(frame.Alerts)
	return frame
}

// Frame builds a display frame from the current snapshot
func (m *Monitor) Frame() models.Frame {
	return m.frame(false)
}

func (m *Monitor) frame(withWaves bool) models.Frame {
	state := m.store.Snapshot()
	frame := models.NewFrame(uuid.NewString(), m.session, state, atomic.AddInt64(&m.sequence, 1))
	frame.Review = m.window.Entries()
	if withWaves {
		n := int(math.Round(m.opts.SampleRate * m.opts.FrameInterval.Seconds()))
		if n < 1 {
			n = 1
		}
		frame.Waveforms = &models.Waveforms{
			SampleRate: m.opts.SampleRate,
			Samples:    m.waves.Render(state, n),
		}
	}
	return frame
}

// Run drives the monitor until ctx is cancelled: the simulation tick, the
// review sampler, the display frame clock and the alarm watcher. Every timer
// is stopped and the frame stream closed before Run returns. A monitor can
// only be run once.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("monitor already running")
	}
	defer close(m.frames)

	tick := time.NewTicker(m.opts.TickInterval)
	defer tick.Stop()
	review := time.NewTicker(m.opts.ReviewInterval)
	defer review.Stop()
	frameClock := time.NewTicker(m.opts.FrameInterval)
	defer frameClock.Stop()

	m.log.Info("monitor started",
		zap.String("run_id", m.session.RunID),
		zap.Int64("seed", m.session.Seed),
		zap.String("rhythm", m.store.Snapshot().Rhythm.String()))

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		m.engine.Run(ctx, tick)
	}()
	go func() {
		defer wg.Done()
		m.sampler.Run(ctx, review)
	}()
	go func() {
		defer wg.Done()
		m.watchAlarms(ctx)
	}()
	go func() {
		defer wg.Done()
		m.publish(ctx, frameClock)
	}()
	wg.Wait()

	m.opts.Alarm.Stop()
	m.log.Info("monitor stopped", zap.Int64("ticks", m.engine.Ticks()))
	return nil
}

func (m *Monitor) watchAlarms(ctx context.Context) {
	changes, cancel := m.store.Subscribe(1)
	defer cancel()

	m.alarms.Observe(alert.Evaluate(m.store.Snapshot()))
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-changes:
			if !ok {
				return
			}
			m.alarms.Observe(alert.Evaluate(state))
		}
	}
}

func (m *Monitor) publish(ctx context.Context, clock *time.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-clock.C:
			frame := m.frame(true)
			select {
			case m.frames <- frame:
			default:
				m.log.Debug("frame dropped, no reader", zap.Int64("sequence", frame.Meta.Sequence))
			}
		}
	}
}
