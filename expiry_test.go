package casbucket

import (
	"testing"
	"time"
)

type stubState struct{ nanos int64 }

func (s stubState) NanosToFullRefill(int64) int64 { return s.nanos }

func TestNoExpiration(t *testing.T) {
	if d := NoExpiration().TimeToLive(stubState{nanos: 1e9}, 42); d != 0 {
		t.Fatalf("NoExpiration returned %v", d)
	}
}

func TestFixedTTL(t *testing.T) {
	if d := FixedTTL(time.Minute).TimeToLive(nil, 0); d != time.Minute {
		t.Fatalf("FixedTTL returned %v", d)
	}
}

func TestRefillBasedTTL(t *testing.T) {
	s := RefillBasedTTL()
	if d := s.TimeToLive(stubState{nanos: 1500 * 1e6}, 0); d != 1500*time.Millisecond {
		t.Fatalf("refill-based TTL = %v, want 1.5s", d)
	}
	// full bucket => no expiry
	if d := s.TimeToLive(stubState{nanos: 0}, 0); d != 0 {
		t.Fatalf("full bucket TTL = %v, want 0", d)
	}
	if d := s.TimeToLive(nil, 0); d != 0 {
		t.Fatalf("nil state TTL = %v, want 0", d)
	}
}

func TestTTLMillisRounding(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int64
	}{
		{-time.Second, 0},
		{0, 0},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{5 * time.Second, 5000},
	}
	for _, tc := range cases {
		if got := ttlMillis(tc.in); got != tc.want {
			t.Fatalf("ttlMillis(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
