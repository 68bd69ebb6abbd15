package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrProbePending = errors.New("circuit breaker probe already in flight")
)

// State is the position of a breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings tunes a breaker. Zero values fall back to DefaultSettings.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// Cooldown is how long the breaker stays open before admitting a probe
	Cooldown time.Duration
	// Probes is the number of consecutive successful probes that close it again
	Probes int
	// OnStateChange observes every transition
	OnStateChange func(name string, from, to State)
}

// DefaultSettings suits a remote fetch performed on reload or startup
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		Probes:           1,
	}
}

// Stats is a point-in-time view of a breaker
type Stats struct {
	State               State
	ConsecutiveFailures int
	TotalFailures       int
	TotalSuccesses      int
	OpenedAt            time.Time
}

// Breaker guards calls to a flaky dependency
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	stats     Stats
	inFlight  int
	successes int
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	def := DefaultSettings()
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = def.FailureThreshold
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = def.Cooldown
	}
	if settings.Probes <= 0 {
		settings.Probes = def.Probes
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, promoting open to half-open once the cooldown elapsed
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Stats returns a copy of the counters
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	s := b.stats
	s.State = b.state
	return s
}

// Call runs fn through the breaker. Context cancellation is not counted as a failure.
func Call[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}

	result, err := fn(ctx)
	switch {
	case err == nil:
		b.record(true)
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		b.release()
	default:
		b.record(false)
	}
	return result, err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh()
	switch b.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.inFlight > 0 {
			return ErrProbePending
		}
	}
	b.inFlight++
	return nil
}

func (b *Breaker) release() {
	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inFlight--
	if ok {
		b.stats.TotalSuccesses++
		b.stats.ConsecutiveFailures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.settings.Probes {
				b.transition(StateClosed)
			}
		}
		return
	}

	b.stats.TotalFailures++
	b.stats.ConsecutiveFailures++
	if b.state == StateHalfOpen || b.stats.ConsecutiveFailures >= b.settings.FailureThreshold {
		b.transition(StateOpen)
	}
}

// refresh must be called with mu held
func (b *Breaker) refresh() {
	if b.state == StateOpen && b.now().Sub(b.stats.OpenedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen)
	}
}

// transition must be called with mu held
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.successes = 0
	switch to {
	case StateOpen:
		b.stats.OpenedAt = b.now()
	case StateClosed:
		b.stats.ConsecutiveFailures = 0
		b.stats.OpenedAt = time.Time{}
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
