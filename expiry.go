package casbucket

import "time"

// State is the logical bucket state attached to a swap attempt. The engine
// treats it as opaque except for the single query expiration strategies
// need: how long until the bucket refills to capacity.
type State interface {
	// NanosToFullRefill reports the nanoseconds remaining, measured from
	// nowNanos, until the bucket is back at full capacity. Zero or negative
	// means the bucket is already full.
	NanosToFullRefill(nowNanos int64) int64
}

// ExpirationStrategy converts the state being written plus a fresh clock
// reading into a time-to-live for the stored value. A non-positive result
// stores the value without expiry.
type ExpirationStrategy interface {
	TimeToLive(state State, nowNanos int64) time.Duration
}

// ExpirationStrategyFunc adapts a plain function to ExpirationStrategy.
type ExpirationStrategyFunc func(state State, nowNanos int64) time.Duration

func (f ExpirationStrategyFunc) TimeToLive(state State, nowNanos int64) time.Duration {
	return f(state, nowNanos)
}

// NoExpiration stores values without a TTL. Keys persist until removed.
func NoExpiration() ExpirationStrategy {
	return ExpirationStrategyFunc(func(State, int64) time.Duration { return 0 })
}

// FixedTTL attaches the same TTL to every write, replacing whatever TTL the
// key carried before.
func FixedTTL(d time.Duration) ExpirationStrategy {
	return ExpirationStrategyFunc(func(State, int64) time.Duration { return d })
}

// RefillBasedTTL expires a bucket as soon as it would be indistinguishable
// from a fresh one: the moment it refills to capacity. Idle buckets thus
// evict themselves instead of accumulating in the store.
func RefillBasedTTL() ExpirationStrategy {
	return ExpirationStrategyFunc(func(s State, nowNanos int64) time.Duration {
		if s == nil {
			return 0
		}
		return time.Duration(s.NanosToFullRefill(nowNanos))
	})
}
