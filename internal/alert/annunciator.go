package alert

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Annunciator is the audible alarm. It loops while started and is silent
// once stopped; any throttling is its own business.
type Annunciator interface {
	Start()
	Stop()
}

// Controller turns the assessment of every vitals change into annunciator
// calls: Start on every critical assessment, Stop when the condition clears.
type Controller struct {
	out    Annunciator
	log    *zap.Logger
	mu     sync.Mutex
	active bool
}

// NewController creates a controller driving out
func NewController(out Annunciator, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{out: out, log: log}
}

// Observe feeds the latest assessment to the controller
func (c *Controller) Observe(a Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a.Critical {
		if !c.active {
			c.log.Warn("critical alarm raised", zap.Any("out_of_range", a.OutOfRange))
		}
		c.active = true
		c.out.Start()
		return
	}
	if c.active {
		c.active = false
		c.log.Info("critical alarm cleared")
		c.out.Stop()
	}
}

// Active reports whether the alarm is currently sounding
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Bell is a terminal annunciator: it writes BEL characters to w on a fixed
// period while started. If a write fails the bell goes quiet on its own and a
// Start inside the throttle window of the previous one is ignored. Stop ends
// the episode and clears the throttle, so the next Start always rings.
type Bell struct {
	w        io.Writer
	period   time.Duration
	throttle time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	playing   bool
	lastStart time.Time
	stop      chan struct{}
	done      chan struct{}

	writeFailed sync.Once
}

// NewBell creates a bell ringing every period with the given restart throttle
func NewBell(w io.Writer, period, throttle time.Duration, log *zap.Logger) *Bell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bell{
		w:        w,
		period:   period,
		throttle: throttle,
		log:      log,
		now:      time.Now,
	}
}

// Start begins ringing unless already ringing or throttled
func (b *Bell) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playing {
		return
	}
	if !b.lastStart.IsZero() && b.now().Sub(b.lastStart) < b.throttle {
		return
	}

	b.playing = true
	b.lastStart = b.now()
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.loop(b.stop, b.done)
}

// Stop silences the bell
func (b *Bell) Stop() {
	b.mu.Lock()
	stop, done := b.stop, b.done
	wasPlaying := b.playing
	b.playing = false
	b.lastStart = time.Time{}
	b.stop, b.done = nil, nil
	b.mu.Unlock()

	if wasPlaying {
		close(stop)
		<-done
	}
}

// Playing reports whether the bell is ringing
func (b *Bell) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

func (b *Bell) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	if !b.ring(stop) {
		return
	}
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !b.ring(stop) {
				return
			}
		}
	}
}

// ring reports whether the bell should keep going
func (b *Bell) ring(stop <-chan struct{}) bool {
	if _, err := b.w.Write([]byte{'\a'}); err != nil {
		b.writeFailed.Do(func() {
			b.log.Warn("alarm bell write failed", zap.Error(err))
		})
		b.mu.Lock()
		if b.stop == stop {
			b.playing = false
			b.stop, b.done = nil, nil
		}
		b.mu.Unlock()
		return false
	}
	return true
}
