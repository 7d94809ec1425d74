// Package breaker stops calls to a failing dependency for a cool-down period.
//
// A Breaker starts closed. After MaxFailures consecutive failures it opens and
// rejects calls with ErrOpen until Cooldown has elapsed; it then lets up to
// HalfOpenTrials calls through. A failed trial call re-opens it, and HalfOpenTrials
// successful trial calls close it again.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned without calling the dependency while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds breaker settings. Zero values fall back to defaults.
type Config struct {
	Name           string
	MaxFailures    int           // consecutive failures before opening (default 5)
	Cooldown       time.Duration // time spent open before trial calls (default 30s)
	HalfOpenTrials int           // trial calls allowed while half-open (default 1)
}

// Breaker guards calls to a single dependency.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	trials      int
	now         func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// New creates a closed breaker.
func New(cfg Config) *Breaker {
	b := &Breaker{
		name:        cfg.Name,
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		trials:      cfg.HalfOpenTrials,
		now:         time.Now,
	}
	if b.maxFailures <= 0 {
		b.maxFailures = 5
	}
	if b.cooldown <= 0 {
		b.cooldown = 30 * time.Second
	}
	if b.trials <= 0 {
		b.trials = 1
	}
	return b
}

// Do runs fn unless the breaker is open. Context cancellation by the caller is
// not counted as a dependency failure.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.acquire() {
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	}

	err := fn(ctx)
	switch {
	case err == nil:
		b.onSuccess()
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		b.release()
	default:
		b.onFailure()
	}
	return err
}

// State reports the current position, moving an expired open breaker to half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

func (b *Breaker) advance() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		b.successes = 0
		b.inFlight = 0
	}
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	switch b.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.inFlight < b.trials {
			b.inFlight++
			return true
		}
	}
	return false
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.trials {
			b.state = StateClosed
			b.failures = 0
			b.inFlight = 0
		}
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.maxFailures {
			b.trip()
		}
	case StateHalfOpen:
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
	b.inFlight = 0
}
