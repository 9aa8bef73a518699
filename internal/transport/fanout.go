package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/models"
)

// Fanout delivers the monitor's frames to every attached display. A display
// holds at most one pending frame; a frame arriving before the display took
// the pending one is coalesced into it, so a slow display skips ahead to the
// newest numerics without losing trace samples and never stalls the others.
type Fanout struct {
	source     <-chan models.Frame
	maxSamples int
	log        *zap.Logger

	mu       sync.Mutex
	displays map[int]*display
	nextID   int
	stopped  bool
	quit     chan struct{}

	coalesced atomic.Int64
}

// NewFanout creates a fan-out reading source. maxSamples caps the trace
// samples a coalesced frame keeps per channel.
func NewFanout(source <-chan models.Frame, maxSamples int, log *zap.Logger) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{
		source:     source,
		maxSamples: maxSamples,
		log:        log,
		displays:   make(map[int]*display),
		quit:       make(chan struct{}),
	}
}

// Attach registers a display. The returned channel is closed once the source
// is exhausted, Run's context is done or detach is called.
func (f *Fanout) Attach() (<-chan models.Frame, func()) {
	d := &display{
		out:  make(chan models.Frame),
		wake: make(chan struct{}, 1),
		gone: make(chan struct{}),
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.stopped {
		d.done = true
	} else {
		f.displays[id] = d
	}
	f.mu.Unlock()

	go d.pump(f.quit)

	var once sync.Once
	detach := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.displays, id)
			f.mu.Unlock()
			close(d.gone)
		})
	}
	return d.out, detach
}

// Displays returns the number of attached displays
func (f *Fanout) Displays() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.displays)
}

// Coalesced returns how many frames were folded into a later one because a
// display had not yet taken them
func (f *Fanout) Coalesced() int64 {
	return f.coalesced.Load()
}

// Run distributes frames until the source closes or ctx is done. Frames still
// pending when the source closes are delivered; on cancellation they are not.
func (f *Fanout) Run(ctx context.Context) {
	defer func() { f.stop(ctx.Err() != nil) }()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-f.source:
			if !ok {
				return
			}
			f.offer(frame)
		}
	}
}

func (f *Fanout) offer(frame models.Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range f.displays {
		if d.offer(frame, f.maxSamples) {
			f.coalesced.Add(1)
			f.log.Debug("frame coalesced for slow display",
				zap.Int64("sequence", frame.Meta.Sequence))
		}
	}
}

func (f *Fanout) stop(cancelled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}
	f.stopped = true
	for _, d := range f.displays {
		d.finish()
	}
	if cancelled {
		close(f.quit)
	}
}

type display struct {
	out  chan models.Frame
	wake chan struct{}
	gone chan struct{}

	mu      sync.Mutex
	pending *models.Frame
	done    bool
}

// offer reports whether frame was coalesced with a pending one
func (d *display) offer(frame models.Frame, maxSamples int) bool {
	d.mu.Lock()
	coalesced := d.pending != nil
	if coalesced {
		frame = models.Coalesce(*d.pending, frame, maxSamples)
	}
	d.pending = &frame
	d.mu.Unlock()

	d.signal()
	return coalesced
}

func (d *display) finish() {
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()
	d.signal()
}

func (d *display) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *display) take() (frame models.Frame, ok, done bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return models.Frame{}, false, d.done
	}
	frame = *d.pending
	d.pending = nil
	return frame, true, d.done
}

func (d *display) pump(quit <-chan struct{}) {
	defer close(d.out)

	for {
		frame, ok, done := d.take()
		if !ok {
			if done {
				return
			}
			select {
			case <-d.wake:
				continue
			case <-d.gone:
				return
			case <-quit:
				return
			}
		}

		select {
		case d.out <- frame:
		case <-d.gone:
			return
		case <-quit:
			return
		}
	}
}
