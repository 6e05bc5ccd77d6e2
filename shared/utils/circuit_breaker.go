package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is refusing calls
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker protects calls to an external dependency such as the
// identity provider. After maxFailures consecutive failures it opens and
// refuses calls until resetTimeout passes, then lets a single probe
// through before closing again.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	open        bool
	probing     bool
}

// NewCircuitBreaker creates a circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
	}
}

// Call executes fn under breaker protection
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.open {
		if time.Since(cb.lastFailure) < cb.resetTimeout || cb.probing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		// Half-open: allow one probe through
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.maxFailures {
			cb.open = true
		}
		return err
	}
	cb.failures = 0
	cb.open = false
	return nil
}
