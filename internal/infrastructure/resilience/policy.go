package resilience

import "time"

// Config tunes the per-operation circuit breakers. Calls are never retried;
// an open breaker fails the call immediately.
type Config struct {
	Enabled         bool
	MinRequests     uint32
	FailureRatio    float64
	OpenTimeout     time.Duration
	HalfOpenMaxCall uint32
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		MinRequests:     10,
		FailureRatio:    0.5,
		OpenTimeout:     30 * time.Second,
		HalfOpenMaxCall: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MinRequests == 0 {
		out.MinRequests = def.MinRequests
	}
	if out.FailureRatio <= 0 || out.FailureRatio > 1 {
		out.FailureRatio = def.FailureRatio
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = def.OpenTimeout
	}
	if out.HalfOpenMaxCall == 0 {
		out.HalfOpenMaxCall = def.HalfOpenMaxCall
	}
	return out
}
