// Package resilience guards optional dependencies (the leaderboard cache) so
// their outages degrade to slower reads instead of failed requests.
package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig is loaded from CACHE_CIRCUIT_* settings.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	d := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = d.HalfOpenMaxReq
	}
	return c
}

// CircuitBreaker counts consecutive failures. After FailureThreshold of them
// it opens for OpenTimeout, then lets HalfOpenMaxReq probes through; all of
// them must succeed to close it again.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu             sync.Mutex
	state          CircuitState
	failures       int
	openedAt       time.Time
	probes         int
	probeSuccesses int
	onChange       func(from, to CircuitState)
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}.withDefaults()
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: CircuitStateClosed}
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled; a nil
// breaker allows every call.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
}

// OnStateChange registers fn to run after every transition, outside the lock.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Execute runs fn when the breaker allows it and records the outcome.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.Allow(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	notify := b.noop
	defer func() {
		b.mu.Unlock()
		notify()
	}()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		notify = b.moveTo(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	notify := b.noop
	defer func() {
		b.mu.Unlock()
		notify()
	}()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.probeSuccesses++
		if b.probeSuccesses >= b.cfg.HalfOpenMaxReq {
			notify = b.moveTo(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	notify := b.noop
	defer func() {
		b.mu.Unlock()
		notify()
	}()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			notify = b.moveTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		notify = b.moveTo(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

// State reports half_open once the open timeout has elapsed, even before the
// next call performs the transition.
func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) noop() {}

// moveTo must be called with mu held. It returns the listener call to run
// after unlocking.
func (b *CircuitBreaker) moveTo(to CircuitState) func() {
	from := b.state
	b.state = to
	b.failures = 0
	b.probes = 0
	b.probeSuccesses = 0
	if to == CircuitStateOpen {
		b.openedAt = b.now()
	} else {
		b.openedAt = time.Time{}
	}

	fn := b.onChange
	if fn == nil || from == to {
		return b.noop
	}
	return func() { fn(from, to) }
}
