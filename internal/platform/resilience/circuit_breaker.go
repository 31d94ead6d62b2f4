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

// CircuitBreaker trips after consecutive failures and lets a bounded number of
// trial requests through once the open timeout elapses. The zero
// *CircuitBreaker (nil) is a pass-through.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state     CircuitState
	failures  int
	openedAt  time.Time
	trials    int
	succeeded int
	now       func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if openTimeout <= 0 {
		openTimeout = DefaultCircuitBreakerConfig().OpenTimeout
	}
	return &CircuitBreaker{
		failureThreshold: max(failureThreshold, 1),
		openTimeout:      openTimeout,
		halfOpenMaxReq:   max(halfOpenMaxReq, 1),
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// Execute runs fn when the breaker admits it. isFailure decides which errors
// count against the breaker; a nil isFailure counts every error.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.transition(CircuitStateHalfOpen)
	}

	if b.state == CircuitStateHalfOpen {
		if b.trials >= b.halfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.trials++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.trials = max(b.trials-1, 0)
		b.succeeded++
		if b.succeeded >= b.halfOpenMaxReq && b.trials == 0 {
			b.transition(CircuitStateClosed)
		}
	}
}

// Release gives back a half-open trial slot without judging the outcome, for
// calls abandoned by their caller.
func (b *CircuitBreaker) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateHalfOpen {
		b.trials = max(b.trials-1, 0)
	}
}

func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.transition(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) transition(to CircuitState) {
	b.state = to
	b.trials = 0
	b.succeeded = 0
	switch to {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}
