package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/casbucket"
	"github.com/unkn0wn-root/casbucket/backend/local"
	"github.com/unkn0wn-root/casbucket/codec"
)

type fakeClock struct {
	mu    sync.Mutex
	nanos int64
}

func (c *fakeClock) NowNanos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nanos
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.nanos += d.Nanoseconds()
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg Config, clock casbucket.Clock) *Limiter {
	t.Helper()
	mgr, err := casbucket.New(casbucket.Options{
		Backend:    local.New(),
		Expiration: casbucket.RefillBasedTTL(),
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("New manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	l, err := NewLimiter(LimiterOptions{Manager: mgr, Config: cfg, Clock: clock})
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}
	return l
}

func TestLimiterCreatesFullOnFirstUse(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{nanos: 1}
	l := newTestLimiter(t, Config{Capacity: 2, RefillTokens: 1, RefillPeriod: time.Hour}, clock)

	key := []byte("tenant:a")
	for i := 0; i < 2; i++ {
		ok, err := l.TryConsume(ctx, key, 1)
		if err != nil || !ok {
			t.Fatalf("consume %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := l.TryConsume(ctx, key, 1)
	if err != nil {
		t.Fatalf("consume on empty: %v", err)
	}
	if ok {
		t.Fatalf("empty bucket allowed a token")
	}
}

func TestLimiterRefillsOverTime(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{nanos: 1}
	l := newTestLimiter(t, Config{Capacity: 2, RefillTokens: 1, RefillPeriod: time.Second}, clock)

	key := []byte("k")
	for i := 0; i < 2; i++ {
		if ok, err := l.TryConsume(ctx, key, 1); err != nil || !ok {
			t.Fatalf("drain %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.TryConsume(ctx, key, 1); ok {
		t.Fatalf("empty bucket allowed a token")
	}

	clock.advance(time.Second)
	if ok, err := l.TryConsume(ctx, key, 1); err != nil || !ok {
		t.Fatalf("consume after refill: ok=%v err=%v", ok, err)
	}
}

// TestLimiterNeverOverspends races many consumers against one bucket; the
// swap protocol must keep the total at exactly the capacity.
func TestLimiterNeverOverspends(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{nanos: 1}
	l := newTestLimiter(t, Config{Capacity: 20, RefillTokens: 1, RefillPeriod: time.Hour}, clock)

	const callers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			ok, err := l.TryConsume(ctx, []byte("shared"), 1)
			if err != nil {
				t.Errorf("TryConsume: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if granted != 20 {
		t.Fatalf("granted %d tokens from a capacity-20 bucket", granted)
	}
}

func TestLimiterAvailableAndReset(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{nanos: 1}
	l := newTestLimiter(t, Config{Capacity: 5, RefillTokens: 1, RefillPeriod: time.Hour}, clock)

	key := []byte("k")
	// absent bucket reads as full
	if n, err := l.Available(ctx, key); err != nil || n != 5 {
		t.Fatalf("Available on absent: n=%d err=%v", n, err)
	}
	if ok, err := l.TryConsume(ctx, key, 3); err != nil || !ok {
		t.Fatalf("consume 3: ok=%v err=%v", ok, err)
	}
	if n, err := l.Available(ctx, key); err != nil || n != 2 {
		t.Fatalf("Available after consume: n=%d err=%v", n, err)
	}

	if err := l.Reset(ctx, key); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, err := l.Available(ctx, key); err != nil || n != 5 {
		t.Fatalf("Available after reset: n=%d err=%v", n, err)
	}
}

func TestLimiterRejectsNonPositiveTokens(t *testing.T) {
	clock := &fakeClock{nanos: 1}
	l := newTestLimiter(t, Config{Capacity: 5, RefillTokens: 1, RefillPeriod: time.Hour}, clock)
	if _, err := l.TryConsume(context.Background(), []byte("k"), 0); err == nil {
		t.Fatalf("zero tokens accepted")
	}
}

func TestLimiterStateRoundTripsAcrossCodecs(t *testing.T) {
	st := State{Capacity: 10, RefillTokens: 2, RefillPeriodNanos: 1e9, Available: 7, LastRefillNanos: 123}

	codecs := map[string]codec.Codec[State]{
		"msgpack": codec.Msgpack[State]{},
		"cbor":    codec.MustCBOR[State](true),
		"json":    codec.JSON[State]{},
	}
	for name, c := range codecs {
		b, err := c.Encode(st)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		got, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if got != st {
			t.Fatalf("%s round trip: got %+v want %+v", name, got, st)
		}
	}
}
