package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the guarded function while the
// breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// State of the breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

type Settings struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures int
	// Timeout is how long the breaker stays open before letting a trial
	// call through.
	Timeout time.Duration
}

type CircuitBreaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	now         func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		timeout:     settings.Timeout,
		now:         time.Now,
		state:       StateClosed,
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State reports the current state, moving open to half-open once the
// timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) > cb.timeout {
		cb.state = StateHalfOpen
	}
	return cb.state
}

// Execute runs fn unless the breaker is open
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.currentState() == StateOpen {
		cb.mu.Unlock()
		return ErrOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return nil
}
