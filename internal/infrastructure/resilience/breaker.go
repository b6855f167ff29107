package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the guarded function while the
// breaker is open, or while its single half-open probe is in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{"closed", "half-open", "open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings tune a Breaker. Zero values take the defaults noted per field.
type Settings struct {
	Threshold int           // consecutive failures that open the breaker (5)
	Cooldown  time.Duration // time spent open before a probe is let through (30s)

	// Failure classifies a call's error. Errors it rejects count as
	// successes. Default: any non-nil error.
	Failure func(err error) bool

	OnStateChange func(name string, from, to State)
}

// Breaker stops calling a dependency after a run of failures and probes it
// with one call once the cooldown has passed.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker.
func New(name string, settings Settings) *Breaker {
	if settings.Threshold <= 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Failure == nil {
		settings.Failure = func(err error) bool { return err != nil }
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

func (b *Breaker) Name() string { return b.name }

// State reports the position, moving open to half-open once the cooldown
// is over.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Do runs fn when the breaker admits it and records the result. A panic in
// fn counts as a failure and is re-raised.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	probe, err := b.admit()
	if err != nil {
		return err
	}

	completed := false
	defer func() {
		if !completed {
			b.record(probe, true)
		}
	}()
	err = fn(ctx)
	completed = true
	b.record(probe, b.settings.Failure(err))
	return err
}

func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh()
	switch b.state {
	case StateOpen:
		return false, ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return false, ErrCircuitOpen
		}
		b.probing = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) record(probe, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe {
		b.probing = false
		if failed {
			b.open()
		} else {
			b.failures = 0
			b.moveTo(StateClosed)
		}
		return
	}
	// a late result from before the breaker opened changes nothing
	if b.state != StateClosed {
		return
	}
	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.settings.Threshold {
		b.open()
	}
}

func (b *Breaker) refresh() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.moveTo(StateHalfOpen)
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.moveTo(StateOpen)
}

func (b *Breaker) moveTo(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
