package bucket

import (
	"testing"
	"time"
)

func cfg10PerSecond() Config {
	return Config{Capacity: 10, RefillTokens: 10, RefillPeriod: time.Second}
}

func TestNewStateStartsFull(t *testing.T) {
	s := NewState(cfg10PerSecond(), 5)
	if s.Available != 10 || s.LastRefillNanos != 5 {
		t.Fatalf("fresh state = %+v", s)
	}
}

func TestTryConsumeDrains(t *testing.T) {
	s := NewState(cfg10PerSecond(), 0)
	for i := 0; i < 10; i++ {
		if !s.TryConsume(1, 0) {
			t.Fatalf("consume %d denied on full bucket", i)
		}
	}
	if s.TryConsume(1, 0) {
		t.Fatalf("consume allowed on empty bucket")
	}
	if s.Available != 0 {
		t.Fatalf("Available = %d after drain", s.Available)
	}
}

func TestRefillKeepsFractionalProgress(t *testing.T) {
	s := NewState(cfg10PerSecond(), 0)
	s.Available = 0
	s.LastRefillNanos = 0

	// 250ms at 10 tokens/s => 2 tokens, 50ms of progress retained
	s.Refill(250 * 1e6)
	if s.Available != 2 {
		t.Fatalf("Available = %d, want 2", s.Available)
	}
	if s.LastRefillNanos != 200*1e6 {
		t.Fatalf("LastRefillNanos = %d, want 200ms", s.LastRefillNanos)
	}

	// another 150ms: total progress since last refill is 200ms => 2 more
	s.Refill(400 * 1e6)
	if s.Available != 4 {
		t.Fatalf("Available = %d, want 4", s.Available)
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	s := NewState(cfg10PerSecond(), 0)
	s.Available = 3
	s.Refill(time.Hour.Nanoseconds())
	if s.Available != 10 {
		t.Fatalf("Available = %d, want capacity", s.Available)
	}
	if s.LastRefillNanos != time.Hour.Nanoseconds() {
		t.Fatalf("LastRefillNanos not advanced to now on overflow")
	}
}

func TestRefillIgnoresClockGoingBackwards(t *testing.T) {
	s := NewState(cfg10PerSecond(), 1e9)
	s.Available = 5
	s.Refill(0)
	if s.Available != 5 || s.LastRefillNanos != 1e9 {
		t.Fatalf("backwards clock mutated state: %+v", s)
	}
}

func TestNanosToFullRefill(t *testing.T) {
	s := NewState(cfg10PerSecond(), 0)
	if got := s.NanosToFullRefill(0); got != 0 {
		t.Fatalf("full bucket wait = %d, want 0", got)
	}

	s.TryConsume(5, 0)
	// 5 missing tokens at 10/s => 500ms
	if got := s.NanosToFullRefill(0); got != 500*1e6 {
		t.Fatalf("wait = %d, want 500ms", got)
	}
	// 100ms later one token is back and another is 0ms away
	if got := s.NanosToFullRefill(100 * 1e6); got != 400*1e6 {
		t.Fatalf("wait after 100ms = %d, want 400ms", got)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []Config{
		{Capacity: 0, RefillTokens: 1, RefillPeriod: time.Second},
		{Capacity: 1, RefillTokens: 0, RefillPeriod: time.Second},
		{Capacity: 1, RefillTokens: 1, RefillPeriod: 0},
	}
	for i, c := range bad {
		if err := c.validate(); err == nil {
			t.Fatalf("config %d accepted: %+v", i, c)
		}
	}
	if err := cfg10PerSecond().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
