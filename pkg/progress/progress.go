// Package progress provides a time-driven loading indicator. Progress is
// simulated on a fixed tick and does not track real work; Complete jumps
// to 100% whenever the real operation ends.
package progress

import (
	"sync"
	"time"
)

// State is the indicator phase.
type State int

const (
	// Idle means hidden at 0%.
	Idle State = iota

	// Loading means visible and advancing on each tick.
	Loading

	// Complete means shown at 100% until the hold delay elapses.
	Complete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Complete:
		return "complete"
	default:
		return "idle"
	}
}

// Defaults taken from the browser progress bar: +10% every 100ms, hold
// 100ms at completion.
const (
	DefaultInterval = 100 * time.Millisecond
	DefaultStep     = 10
	DefaultHold     = 100 * time.Millisecond
)

// Snapshot is the visible indicator state.
type Snapshot struct {
	State   State
	Percent int
}

// Observer is called on every visible change while the indicator's lock is
// held. It must not call back into the Indicator.
type Observer func(Snapshot)

// Config holds indicator timing.
type Config struct {
	Interval time.Duration
	Step     int
	Hold     time.Duration
}

// DefaultConfig returns the default timing.
func DefaultConfig() Config {
	return Config{Interval: DefaultInterval, Step: DefaultStep, Hold: DefaultHold}
}

// Indicator is a cosmetic Idle -> Loading -> Complete -> Idle state machine.
type Indicator struct {
	cfg      Config
	observer Observer

	mu      sync.Mutex
	snap    Snapshot
	gen     uint64
	ticker  *time.Ticker
	stopCh  chan struct{}
	holdTmr *time.Timer
}

// New creates an idle indicator. observer may be nil.
func New(cfg Config, observer Observer) *Indicator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.Hold < 0 {
		cfg.Hold = 0
	}
	return &Indicator{cfg: cfg, observer: observer}
}

// Snapshot returns the current state.
func (in *Indicator) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snap
}

// Start resets to 0% and begins advancing. Calling Start while loading
// restarts the simulation.
func (in *Indicator) Start() {
	in.mu.Lock()
	in.stopLocked()
	in.gen++
	gen := in.gen
	in.snap = Snapshot{State: Loading, Percent: 0}
	ticker := time.NewTicker(in.cfg.Interval)
	stop := make(chan struct{})
	in.ticker, in.stopCh = ticker, stop
	in.notify(in.snap)
	in.mu.Unlock()

	go in.run(gen, ticker, stop)
}

func (in *Indicator) run(gen uint64, ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			in.mu.Lock()
			if in.gen != gen || in.snap.State != Loading {
				in.mu.Unlock()
				return
			}
			next := in.snap.Percent + in.cfg.Step
			if next > 100 {
				// simulation done, wait for Complete
				in.mu.Unlock()
				ticker.Stop()
				return
			}
			in.snap.Percent = next
			in.notify(in.snap)
			in.mu.Unlock()
		}
	}
}

// Complete forces 100% and returns to Idle after the hold delay,
// regardless of the simulated progress.
func (in *Indicator) Complete() {
	in.mu.Lock()
	in.stopLocked()
	in.gen++
	gen := in.gen
	in.snap = Snapshot{State: Complete, Percent: 100}
	in.holdTmr = time.AfterFunc(in.cfg.Hold, func() { in.reset(gen) })
	in.notify(in.snap)
	in.mu.Unlock()
}

func (in *Indicator) reset(gen uint64) {
	in.mu.Lock()
	if in.gen != gen {
		in.mu.Unlock()
		return
	}
	in.snap = Snapshot{State: Idle, Percent: 0}
	in.notify(in.snap)
	in.mu.Unlock()
}

// Stop cancels any running simulation or hold and returns to Idle without
// notifying.
func (in *Indicator) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stopLocked()
	in.gen++
	in.snap = Snapshot{State: Idle}
}

func (in *Indicator) stopLocked() {
	if in.ticker != nil {
		in.ticker.Stop()
		close(in.stopCh)
		in.ticker, in.stopCh = nil, nil
	}
	if in.holdTmr != nil {
		in.holdTmr.Stop()
		in.holdTmr = nil
	}
}

func (in *Indicator) notify(s Snapshot) {
	if in.observer != nil {
		in.observer(s)
	}
}
