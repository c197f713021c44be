package clients

import (
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cool-down elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through.
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

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the run of consecutive failures that opens the circuit.
	MaxFailures int

	// Timeout is the cool-down spent open before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes allowed and the
	// run of probe successes that closes the circuit again.
	HalfOpenLimit int
}

// CircuitBreaker stops calling the remote endpoint after repeated failures.
//
//	closed    --MaxFailures failures-->   open
//	open      --Timeout elapsed-->        half-open
//	half-open --HalfOpenLimit successes--> closed
//	half-open --any failure-->            open
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
	listener  func(from, to State)
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to run, on its own goroutine, after each transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.listener = fn
}

// Allow reports whether a call may proceed. An open breaker whose cool-down
// has elapsed moves to half-open here.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false
		}

		cb.moveTo(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.probes++
	}

	return true
}

// RecordSuccess reports a call that reached the endpoint.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	case StateOpen:
	}
}

// RecordFailure reports a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures++

		if cb.failures >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.moveTo(StateOpen)
	case StateOpen:
		cb.openedAt = cb.now()
	}
}

// State returns the current state without triggering transitions.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// moveTo changes state; cb.mu must be held.
func (cb *CircuitBreaker) moveTo(next State) {
	if cb.state == next {
		return
	}

	prev := cb.state
	cb.state = next
	cb.failures, cb.successes = 0, 0

	switch next {
	case StateOpen:
		cb.openedAt = cb.now()
		cb.probes = 0
	case StateClosed:
		cb.probes = 0
	case StateHalfOpen:
	}

	if cb.listener != nil {
		go cb.listener(prev, next)
	}
}
