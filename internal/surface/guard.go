// Package surface guards drag-and-drop surfaces against overlapping drops.
//
// Each surface (journeys, features, stories) owns one Guard. A Guard is a
// two-state machine: Idle while no drop is being processed, Computing while
// one is. A drop that arrives while Computing is rejected, never queued.
package surface

import (
	"errors"
	"sync"
	"time"
)

type Name string

const (
	Journeys Name = "journeys"
	Features Name = "features"
	Stories  Name = "stories"
)

func (n Name) Valid() bool {
	switch n {
	case Journeys, Features, Stories:
		return true
	default:
		return false
	}
}

type State int

const (
	Idle State = iota
	Computing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Computing:
		return "computing"
	default:
		return "unknown"
	}
}

var (
	ErrBusy      = errors.New("surface busy")
	ErrDebounced = errors.New("drop debounced")
)

// DefaultMinInterval absorbs a double-fired pointer event. It is measured from
// the start of the last applied drop.
const DefaultMinInterval = 150 * time.Millisecond

type Guard struct {
	name        Name
	minInterval time.Duration
	now         func() time.Time

	mu        sync.Mutex
	state     State
	lastBegin time.Time
	begun     bool
}

type Option func(*Guard)

// WithMinInterval sets the minimum time between two accepted drops. Zero disables debouncing.
func WithMinInterval(d time.Duration) Option {
	return func(g *Guard) {
		if d >= 0 {
			g.minInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGuard(name Name, opts ...Option) *Guard {
	g := &Guard{
		name:        name,
		minInterval: DefaultMinInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Name() Name { return g.name }

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Begin moves the guard from Idle to Computing. The returned done func moves it
// back to Idle; calling it more than once is harmless. Only a drop finished with
// done(true) starts the debounce interval, so a no-op or aborted drop does not
// swallow the next one.
func (g *Guard) Begin() (done func(applied bool), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Idle {
		return nil, ErrBusy
	}
	now := g.now()
	if g.begun && g.minInterval > 0 && now.Sub(g.lastBegin) < g.minInterval {
		return nil, ErrDebounced
	}
	g.state = Computing

	var once sync.Once
	return func(applied bool) {
		once.Do(func() {
			g.mu.Lock()
			g.state = Idle
			if applied {
				g.lastBegin = now
				g.begun = true
			}
			g.mu.Unlock()
		})
	}, nil
}
