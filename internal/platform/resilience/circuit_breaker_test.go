package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open trial to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second trial to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open trial, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Second, 1)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected trial to pass, got %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}

func TestCircuitBreaker_ExecuteIgnoresNonFailures(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	errNotFound := errors.New("not found")

	err := b.Execute(func() error { return errNotFound }, func(err error) bool {
		return !errors.Is(err, errNotFound)
	})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}

	_ = b.Execute(func() error { return errors.New("503") }, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open breaker, got %s", state)
	}
}

func TestCircuitBreakerConfig_BuildDisabled(t *testing.T) {
	var b *CircuitBreaker = CircuitBreakerConfig{Enabled: false}.Build()
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected nil breaker to allow, got %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed state for nil breaker, got %s", state)
	}
}

func TestCircuitBreakerConfig_Normalize(t *testing.T) {
	cfg := CircuitBreakerConfig{Enabled: true}.Normalize()
	if cfg.FailureThreshold != 5 || cfg.OpenTimeout != 15*time.Second || cfg.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
}

func TestCircuitBreaker_ReleaseFreesHalfOpenSlot(t *testing.T) {
	b := NewCircuitBreaker(1, time.Second, 1)
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected trial to pass, got %v", err)
	}
	b.Release()

	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected release to keep half-open, got %s", state)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected released trial slot to be reusable, got %v", err)
	}
}

func TestCircuitBreaker_ReleaseOnClosedKeepsFailures(t *testing.T) {
	b := NewCircuitBreaker(2, time.Second, 1)

	b.RecordFailure()
	b.Release()
	b.RecordFailure()

	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected release not to reset the failure count, got %s", state)
	}
}
