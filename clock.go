package casbucket

import "time"

// Clock supplies the current time in nanoseconds for TTL computation.
// The engine queries it fresh on every swap attempt; results are never
// cached. Inject a deterministic implementation in tests.
type Clock interface {
	NowNanos() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) NowNanos() int64 { return time.Now().UnixNano() }
