package resilience

import "time"

// CircuitBreakerConfig is the env-driven shape shared by every outbound client.
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

// Normalize fills non-positive fields with defaults. Enabled is left as is.
func (cfg CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Build returns nil when the breaker is disabled. A nil *CircuitBreaker lets every call through.
func (cfg CircuitBreakerConfig) Build() *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	cfg = cfg.Normalize()
	return NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
}
