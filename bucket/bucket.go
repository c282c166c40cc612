// Package bucket implements the token-bucket state synchronized by the CAS
// core, plus a Limiter that drives the retry loop end to end. The core
// treats the state as opaque bytes; this package is the boundary
// collaborator that produces them.
package bucket

import (
	"fmt"
	"time"
)

// Config describes a bucket: Capacity tokens maximum, refilled by
// RefillTokens every RefillPeriod.
type Config struct {
	Capacity     int64
	RefillTokens int64
	RefillPeriod time.Duration
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("bucket: capacity must be positive, got %d", c.Capacity)
	}
	if c.RefillTokens <= 0 {
		return fmt.Errorf("bucket: refill tokens must be positive, got %d", c.RefillTokens)
	}
	if c.RefillPeriod <= 0 {
		return fmt.Errorf("bucket: refill period must be positive, got %v", c.RefillPeriod)
	}
	return nil
}

// State is the versioned payload stored per key. Refill parameters travel
// with the state so every process observing the key replays the same
// arithmetic regardless of its local configuration.
type State struct {
	Capacity          int64 `msgpack:"cap" json:"cap"`
	RefillTokens      int64 `msgpack:"rt" json:"rt"`
	RefillPeriodNanos int64 `msgpack:"rp" json:"rp"`
	Available         int64 `msgpack:"av" json:"av"`
	LastRefillNanos   int64 `msgpack:"lr" json:"lr"`
}

// NewState returns a full bucket as of nowNanos.
func NewState(cfg Config, nowNanos int64) State {
	return State{
		Capacity:          cfg.Capacity,
		RefillTokens:      cfg.RefillTokens,
		RefillPeriodNanos: cfg.RefillPeriod.Nanoseconds(),
		Available:         cfg.Capacity,
		LastRefillNanos:   nowNanos,
	}
}

// Refill credits tokens earned since the last refill. LastRefillNanos
// advances only by the time actually converted into tokens, so fractional
// progress is never lost between calls.
func (s *State) Refill(nowNanos int64) {
	if nowNanos <= s.LastRefillNanos {
		return
	}
	elapsed := nowNanos - s.LastRefillNanos
	earned := elapsed / s.RefillPeriodNanos * s.RefillTokens
	earned += elapsed % s.RefillPeriodNanos * s.RefillTokens / s.RefillPeriodNanos
	if earned <= 0 {
		return
	}
	if s.Available+earned >= s.Capacity {
		s.Available = s.Capacity
		s.LastRefillNanos = nowNanos
		return
	}
	s.Available += earned
	s.LastRefillNanos += earned * s.RefillPeriodNanos / s.RefillTokens
}

// TryConsume refills, then takes tokens if available. Returns false without
// mutating the available count when the bucket cannot cover the request.
func (s *State) TryConsume(tokens, nowNanos int64) bool {
	s.Refill(nowNanos)
	if tokens > s.Available {
		return false
	}
	s.Available -= tokens
	return true
}

// NanosToFullRefill satisfies the expiration query of the CAS core: time
// until this bucket is indistinguishable from a fresh one.
func (s State) NanosToFullRefill(nowNanos int64) int64 {
	c := s
	c.Refill(nowNanos)
	deficit := c.Capacity - c.Available
	if deficit <= 0 {
		return 0
	}
	wait := ceilDiv(deficit*c.RefillPeriodNanos, c.RefillTokens)
	if nowNanos > c.LastRefillNanos {
		// credit partial progress already made toward the next token
		wait -= nowNanos - c.LastRefillNanos
	}
	if wait < 0 {
		return 0
	}
	return wait
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
