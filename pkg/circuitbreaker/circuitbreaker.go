package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

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
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling into the database after more than maxFailures
// counted failures inside window, and lets a probe through after timeout.
// Which errors count is decided by the counts function, so rejected data
// never trips the breaker.
type CircuitBreaker struct {
	maxFailures int
	window      time.Duration
	timeout     time.Duration
	counts      func(error) bool
	now         func() time.Time

	mu       sync.Mutex
	state    State
	failures []time.Time
	openedAt time.Time
}

func New(maxFailures int, timeout, window time.Duration, counts func(error) bool) *CircuitBreaker {
	if counts == nil {
		counts = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		window:      window,
		timeout:     timeout,
		counts:      counts,
		now:         time.Now,
		state:       StateClosed,
	}
}

// Execute runs fn unless the breaker is open, in which case it returns ErrOpen
// without calling fn. fn runs outside the lock.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrOpen
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.timeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.failures = cb.failures[:0]
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if err != nil && cb.counts(err) {
		cb.failures = append(cb.failures, now)
		cb.dropExpired(now)
		if cb.state == StateHalfOpen || len(cb.failures) > cb.maxFailures {
			cb.state = StateOpen
			cb.openedAt = now
		}
		return
	}

	cb.dropExpired(now)
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = cb.failures[:0]
	}
}

func (cb *CircuitBreaker) dropExpired(now time.Time) {
	cutoff := now.Add(-cb.window)
	i := 0
	for i < len(cb.failures) && !cb.failures[i].After(cutoff) {
		i++
	}
	cb.failures = cb.failures[i:]
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
